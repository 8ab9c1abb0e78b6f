package middleware

import (
	"context"
	"net/http"

	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/utils"
	"github.com/pratik-mahalle/docbrief/internal/services"
)

// AccessChecker decides whether a request may use paid features
type AccessChecker interface {
	Check(ctx context.Context, req services.AccessRequest) services.Verdict
}

// RequireSubscription rejects requests that are not signed in (401) or have
// no active subscription (402). Both bodies carry redirect_to.
func RequireSubscription(gate AccessChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := GetUserID(r)

			v := gate.Check(r.Context(), services.AccessRequest{UserID: userID})
			switch v.Kind {
			case services.VerdictAllowed:
				next.ServeHTTP(w, r)
			case services.VerdictUnauthenticated:
				utils.WriteRedirectError(w, errors.Unauthorized("Authentication required"), v.RedirectTo)
			default:
				utils.WriteRedirectError(w, errors.PaymentRequired("An active subscription is required"), v.RedirectTo)
			}
		})
	}
}
