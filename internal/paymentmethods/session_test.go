package paymentmethods

import (
	"testing"

	"github.com/designdrip/storefront-core/pkg/backend"
)

func infoWithDefault(id string) *backend.CheckoutInfo {
	return &backend.CheckoutInfo{
		HasPaymentMethods:    true,
		DefaultPaymentMethod: &backend.PaymentMethod{ID: id, IsDefault: true},
	}
}

func TestBootstrapFromDefaultOnFirstLoadOnly(t *testing.T) {
	session := NewSession()

	session.ApplyCheckoutInfo(infoWithDefault("pm_default"))
	if id, ok := session.SelectedID(); !ok || id != "pm_default" {
		t.Fatalf("expected default bootstrap, got %q ok=%v", id, ok)
	}

	// A refetch with a different default must not override the selection.
	session.ApplyCheckoutInfo(infoWithDefault("pm_other"))
	if id, _ := session.SelectedID(); id != "pm_default" {
		t.Fatalf("refetch overrode selection: %q", id)
	}
}

func TestNoDefaultLeavesSelectionUnset(t *testing.T) {
	session := NewSession()
	session.ApplyCheckoutInfo(&backend.CheckoutInfo{HasPaymentMethods: false})

	if _, ok := session.SelectedID(); ok {
		t.Fatalf("expected no selection without a default")
	}

	// A later refetch that does carry a default no longer bootstraps.
	session.ApplyCheckoutInfo(infoWithDefault("pm_late"))
	if _, ok := session.SelectedID(); ok {
		t.Fatalf("late default should not bootstrap after first load")
	}
}

func TestSelectIsLocal(t *testing.T) {
	session := NewSession()
	if err := session.Select("pm_1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if id, ok := session.SelectedID(); !ok || id != "pm_1" {
		t.Fatalf("unexpected selection %q ok=%v", id, ok)
	}

	if err := session.Select(""); err == nil {
		t.Fatalf("expected validation error for blank id")
	}
}

func TestAddFlowSuspendsSelection(t *testing.T) {
	session := NewSession()
	if err := session.Select("pm_1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	session.BeginAdd()
	if !session.Adding() {
		t.Fatalf("expected add flow active")
	}
	if err := session.Select("pm_2"); err == nil {
		t.Fatalf("expected selection rejected during add flow")
	}

	session.CompleteAdd("pm_new")
	if session.Adding() {
		t.Fatalf("add flow should be closed")
	}
	if id, _ := session.SelectedID(); id != "pm_new" {
		t.Fatalf("expected new method selected, got %q", id)
	}
}

func TestCancelAddKeepsPriorSelection(t *testing.T) {
	session := NewSession()
	if err := session.Select("pm_1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	session.BeginAdd()
	session.CancelAdd()

	if id, _ := session.SelectedID(); id != "pm_1" {
		t.Fatalf("cancel changed selection to %q", id)
	}
	if err := session.Select("pm_2"); err != nil {
		t.Fatalf("selection should resume after cancel: %v", err)
	}
}
