package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/bazaar-backend/api/middleware"
	"github.com/angelmondragon/bazaar-backend/api/responses"
	"github.com/angelmondragon/bazaar-backend/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

// revokeFallbackTTL covers tokens issued without an exp claim.
const revokeFallbackTTL = 24 * time.Hour

// AuthLogout denylists the presented token's jti until the token would have
// expired anyway. Logging out twice is not an error.
func AuthLogout(revoker session.Revoker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if revoker == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable"))
			return
		}

		if middleware.UserIDFromContext(ctx) == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		jti, exp := middleware.TokenFromContext(ctx)
		if jti == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token has no jti and cannot be revoked"))
			return
		}

		now := time.Now()
		switch {
		case exp.IsZero():
			exp = now.Add(revokeFallbackTTL)
		case !exp.After(now):
			responses.WriteNoContent(w)
			return
		}

		if err := revoker.Revoke(ctx, jti, exp); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token"))
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(ctx, "revoked_until", exp.UTC()), "auth.logout")
		}
		responses.WriteNoContent(w)
	}
}
