package enums

// CacheTopic names a cached query family that a mutation can invalidate.
// A single checkout call can change all four, so the coordinator returns the
// affected topics and an adapter purges them.
type CacheTopic string

const (
	CacheTopicPaymentMethods CacheTopic = "payment_methods"
	CacheTopicCheckoutInfo   CacheTopic = "checkout_info"
	CacheTopicOrders         CacheTopic = "orders"
	CacheTopicCart           CacheTopic = "cart"
)

// String implements fmt.Stringer.
func (c CacheTopic) String() string {
	return string(c)
}

// AllCacheTopics lists every topic the cache adapter tracks.
func AllCacheTopics() []CacheTopic {
	return []CacheTopic{
		CacheTopicPaymentMethods,
		CacheTopicCheckoutInfo,
		CacheTopicOrders,
		CacheTopicCart,
	}
}
