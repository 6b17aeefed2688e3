package shipping

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/designdrip/storefront-core/pkg/backend"
	"github.com/designdrip/storefront-core/pkg/config"
	"github.com/designdrip/storefront-core/pkg/enums"
	pkgerrors "github.com/designdrip/storefront-core/pkg/errors"
)

var validate = validator.New()

// Address is a captured shipping destination. Method and cost live on
// Details, not here: they can change without touching the address.
type Address struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Complete reports whether every required field is non-empty. Phone and
// line2 are optional.
func (a Address) Complete() bool {
	required := []string{a.Name, a.Line1, a.City, a.State, a.PostalCode, a.Country}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Details is a complete shipping record ready for submission.
type Details struct {
	Address Address              `json:"address"`
	Method  enums.ShippingMethod `json:"method"`
	Cost    int64                `json:"cost"`
}

// Resolver computes shipping costs and stamps captured addresses.
type Resolver struct {
	expressSurcharge int64
}

// NewResolver builds the resolver from the shipping price table.
func NewResolver(cfg config.ShippingConfig) *Resolver {
	return &Resolver{expressSurcharge: cfg.ExpressSurcharge}
}

// CostFor returns the incremental shipping cost for a method. Standard
// shipping is free; express adds the configured surcharge.
func (r *Resolver) CostFor(method enums.ShippingMethod) int64 {
	if method == enums.ShippingMethodExpress {
		return r.expressSurcharge
	}
	return 0
}

// Capture validates a newly collected address and stamps it with the chosen
// method and cost. A validation failure returns an error and produces no
// details, so the caller's prior state stays untouched.
func (r *Resolver) Capture(addr Address, method enums.ShippingMethod) (*Details, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method")
	}
	if err := validate.Struct(addr); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "shipping address is incomplete")
	}
	return &Details{
		Address: addr,
		Method:  method,
		Cost:    r.CostFor(method),
	}, nil
}

// ChangeMethod re-stamps existing details with a new method and recomputed
// cost. Address fields are preserved as-is.
func (r *Resolver) ChangeMethod(details *Details, method enums.ShippingMethod) (*Details, error) {
	if details == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no shipping details captured")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method")
	}
	updated := *details
	updated.Method = method
	updated.Cost = r.CostFor(method)
	return &updated, nil
}

// ToBackend converts details into the wire shape submitted with a checkout.
func (d *Details) ToBackend() *backend.ShippingDetails {
	if d == nil {
		return nil
	}
	return &backend.ShippingDetails{
		Name:  d.Address.Name,
		Phone: d.Address.Phone,
		Address: backend.ShippingAddressFields{
			Line1:      d.Address.Line1,
			Line2:      d.Address.Line2,
			City:       d.Address.City,
			State:      d.Address.State,
			PostalCode: d.Address.PostalCode,
			Country:    d.Address.Country,
		},
		Method: d.Method,
		Cost:   d.Cost,
	}
}
