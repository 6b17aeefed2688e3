package resume

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/designdrip/storefront-core/internal/checkout"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	store, err := NewStore(conn)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestRecordAndResolvePending(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	intent := checkout.PendingIntent{
		UserID:          "user-1",
		PaymentIntentID: "pi_1",
		OrderID:         "order-1",
		Amount:          250000,
	}
	require.NoError(t, store.RecordPending(ctx, intent))

	records, err := store.Unresolved(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, enums.PaymentIntentStatusProcessing, records[0].Status)
	require.Equal(t, int64(250000), records[0].AmountMinor)

	require.NoError(t, store.ResolvePending(ctx, "pi_1"))

	records, err = store.Unresolved(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	record, err := store.Find(ctx, "pi_1")
	require.NoError(t, err)
	require.Equal(t, enums.PaymentIntentStatusSucceeded, record.Status)
	require.NotNil(t, record.ResolvedAt)
}

func TestRecordPendingUpsertsByIntentID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first := checkout.PendingIntent{UserID: "user-1", PaymentIntentID: "pi_1", Amount: 100}
	require.NoError(t, store.RecordPending(ctx, first))

	// The same intent recorded again, now with the order id known.
	second := checkout.PendingIntent{UserID: "user-1", PaymentIntentID: "pi_1", OrderID: "order-1", Amount: 100}
	require.NoError(t, store.RecordPending(ctx, second))

	records, err := store.Unresolved(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "order-1", records[0].OrderID)
}

func TestRecordPendingReopensResolvedIntent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	intent := checkout.PendingIntent{UserID: "user-1", PaymentIntentID: "pi_1", Amount: 100}
	require.NoError(t, store.RecordPending(ctx, intent))
	require.NoError(t, store.resolve(ctx, "pi_1", enums.PaymentIntentStatusCanceled))

	// The same intent enters confirmation again after being expired.
	require.NoError(t, store.RecordPending(ctx, intent))

	records, err := store.Unresolved(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, enums.PaymentIntentStatusProcessing, records[0].Status)
	require.Nil(t, records[0].ResolvedAt)
}

func TestRecordPendingRequiresIntentID(t *testing.T) {
	store := testStore(t)

	err := store.RecordPending(context.Background(), checkout.PendingIntent{UserID: "user-1"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestFindUnknownIntent(t *testing.T) {
	store := testStore(t)

	_, err := store.Find(context.Background(), "pi_missing")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
