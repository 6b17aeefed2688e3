package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/designdrip/storefront-core/api/middleware"
	"github.com/designdrip/storefront-core/api/responses"
	"github.com/designdrip/storefront-core/api/validators"
	"github.com/designdrip/storefront-core/internal/paymentmethods"
	"github.com/designdrip/storefront-core/pkg/logger"
)

// PaymentMethodList returns the user's stored cards.
func PaymentMethodList(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methods, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"paymentMethods": methods})
	}
}

// PaymentMethodSetupIntent returns a client secret for collecting a new card
// on-device and suspends selection for the duration of the add sub-flow.
func PaymentMethodSetupIntent(svc paymentmethods.Service, sessions *paymentmethods.SessionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		secret, err := svc.SetupSecret(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if sessions != nil {
			sessions.Session(userID).BeginAdd()
		}

		responses.WriteSuccess(w, map[string]string{"clientSecret": secret})
	}
}

// PaymentMethodCancelAdd abandons the add sub-flow, leaving the prior
// selection untouched.
func PaymentMethodCancelAdd(sessions *paymentmethods.SessionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if sessions != nil {
			sessions.Session(userID).CancelAdd()
		}

		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}

type selectRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
}

// PaymentMethodSelect records the user's local choice for the current
// checkout flow. No backend call is made until submission.
func PaymentMethodSelect(sessions *paymentmethods.SessionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessions.Session(userID).Select(payload.PaymentMethodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"selectedPaymentMethod": payload.PaymentMethodID})
	}
}

type attachRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
	SetAsDefault    bool   `json:"setAsDefault"`
}

// PaymentMethodAttach attaches a collected card to the user's account,
// closing the add sub-flow and selecting the new card.
func PaymentMethodAttach(svc paymentmethods.Service, sessions *paymentmethods.SessionRegistry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload attachRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := svc.Add(r.Context(), userID, payload.PaymentMethodID, payload.SetAsDefault)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if sessions != nil {
			sessions.Session(userID).CompleteAdd(method.ID)
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, method)
	}
}

// PaymentMethodSetDefault promotes a stored card to the account default.
func PaymentMethodSetDefault(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methodID := chi.URLParam(r, "paymentMethodId")
		if err := svc.SetDefault(r.Context(), userID, methodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "default_updated"})
	}
}

// PaymentMethodDelete detaches a stored card.
func PaymentMethodDelete(svc paymentmethods.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		methodID := chi.URLParam(r, "paymentMethodId")
		if err := svc.Remove(r.Context(), userID, methodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
