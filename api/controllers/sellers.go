package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/api/validators"
	"github.com/angelmondragon/bazaar-backend/internal/sellers"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

// SellerApply submits the caller's seller application. Accepts JSON or a
// form post.
func SellerApply(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyRequest
		if err := validators.DecodeFormOrJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := svc.Apply(r.Context(), payload.toInput(r, userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, applyResponse{
			Message:       "application submitted",
			ApplicationID: seller.ID,
			ReferralCode:  seller.ReferralCode,
		})
	}
}

type applyRequest struct {
	ShopName     string  `json:"shop_name" validate:"required"`
	OwnerName    string  `json:"owner_name"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone" validate:"required,bdphone"`
	Address      *string `json:"address,omitempty"`
	Description  *string `json:"description,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty" validate:"omitempty,url"`
	ReferralCode string  `json:"referral_code"`
}

func (p applyRequest) toInput(r *http.Request, userID uuid.UUID) sellers.ApplyInput {
	return sellers.ApplyInput{
		UserID:       userID,
		AccountEmail: middleware.EmailFromContext(r.Context()),
		AccountName:  middleware.NameFromContext(r.Context()),
		ShopName:     validators.SanitizeString(p.ShopName, 200),
		OwnerName:    validators.SanitizeString(p.OwnerName, 200),
		Email:        validators.SanitizeString(p.Email, 320),
		Phone:        validators.SanitizeString(p.Phone, 40),
		Address:      p.Address,
		Description:  p.Description,
		LogoURL:      p.LogoURL,
		ReferralCode: p.ReferralCode,
	}
}

type applyResponse struct {
	Message       string    `json:"message"`
	ApplicationID uuid.UUID `json:"application_id"`
	ReferralCode  string    `json:"referral_code"`
}

// SellerMe returns the caller's seller profile.
func SellerMe(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Profile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// SellerReferral returns the caller's referral code and commission totals.
func SellerReferral(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Referral(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AdminListSellers returns applications, optionally filtered by ?status=.
func AdminListSellers(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}

		var status *enums.SellerStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, err := enums.ParseSellerStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		list, err := svc.ListApplications(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminDecideSeller approves or rejects a pending application.
func AdminDecideSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seller service unavailable"))
			return
		}

		var payload decideSellerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, err := enums.ParseSellerDecision(strings.TrimSpace(payload.Action))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
			return
		}

		seller, err := svc.Decide(r.Context(), sellers.DecideInput{UserID: payload.UserID, Action: action})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seller)
	}
}

type decideSellerRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Action string    `json:"action" validate:"required,oneof=approve reject"`
}
