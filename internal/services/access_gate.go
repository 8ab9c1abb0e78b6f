package services

import (
	"context"
	"net/url"
	"time"

	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
	"github.com/pratik-mahalle/docbrief/internal/pkg/logger"
	"github.com/pratik-mahalle/docbrief/internal/pkg/metrics"
)

// VerdictKind is the outcome of an access check
type VerdictKind string

const (
	VerdictUnauthenticated   VerdictKind = "unauthenticated"
	VerdictNeedsSubscription VerdictKind = "needs_subscription"
	VerdictAllowed           VerdictKind = "allowed"
)

// Redirect targets
const (
	SignInPath        = "/sign-in"
	PricingPath       = "/pricing"
	DefaultReturnPath = "/dashboard"
)

// Verdict is the access gate decision for a request
type Verdict struct {
	Kind       VerdictKind `json:"verdict"`
	UserID     string      `json:"user_id,omitempty"`
	RedirectTo string      `json:"redirect_to,omitempty"`
}

// AccessRequest describes who is asking and where to return after sign-in
type AccessRequest struct {
	UserID     string
	ReturnPath string
	// Delay is waited before the lookup. Used by demos and tests.
	Delay time.Duration
}

// SubscriptionLookup is the read side of subscription.Repository
type SubscriptionLookup interface {
	GetByUserID(ctx context.Context, userID string) (*subscription.Subscription, error)
}

// AccessGate decides whether a request may use paid features
type AccessGate struct {
	subs   SubscriptionLookup
	logger *logger.Logger
}

// NewAccessGate creates a new access gate
func NewAccessGate(subs SubscriptionLookup, log *logger.Logger) *AccessGate {
	return &AccessGate{
		subs:   subs,
		logger: log,
	}
}

// Check returns the verdict for req. A failed lookup is reported as
// needing a subscription, never as unauthenticated.
func (g *AccessGate) Check(ctx context.Context, req AccessRequest) Verdict {
	v := g.check(ctx, req)
	metrics.RecordAccessVerdict(string(v.Kind))
	return v
}

func (g *AccessGate) check(ctx context.Context, req AccessRequest) Verdict {
	if req.UserID == "" {
		return Verdict{Kind: VerdictUnauthenticated, RedirectTo: SignInURL(req.ReturnPath)}
	}

	needsSubscription := Verdict{Kind: VerdictNeedsSubscription, UserID: req.UserID, RedirectTo: PricingPath}

	if req.Delay > 0 {
		t := time.NewTimer(req.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return needsSubscription
		}
	}

	sub, err := g.subs.GetByUserID(ctx, req.UserID)
	if err != nil {
		if !errors.IsNotFound(err) {
			g.logger.WithFields(map[string]interface{}{
				"user_id": req.UserID,
			}).ErrorWithErr(err, "Subscription lookup failed")
		}
		return needsSubscription
	}

	if !sub.IsActive() {
		return needsSubscription
	}
	return Verdict{Kind: VerdictAllowed, UserID: req.UserID}
}

// SignInURL builds the sign-in redirect carrying the return path
func SignInURL(returnPath string) string {
	if returnPath == "" {
		returnPath = DefaultReturnPath
	}
	return SignInPath + "?redirect_url=" + url.QueryEscape(returnPath)
}
