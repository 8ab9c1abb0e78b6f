package billing

import (
	"bytes"
	"encoding/json"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/pratik-mahalle/docbrief/internal/domain/subscription"
	"github.com/pratik-mahalle/docbrief/internal/pkg/errors"
)

// Webhook event types the application reacts to
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.payment_succeeded"
)

// Event is a parsed webhook event. The concrete type is one of
// CheckoutCompleted, SubscriptionUpdated, SubscriptionDeleted, InvoicePaid
// or Ignored.
type Event interface {
	EventType() string
}

// CheckoutCompleted is emitted when a hosted checkout finishes
type CheckoutCompleted struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
}

// HasReferences reports whether both the customer and subscription are known
func (e CheckoutCompleted) HasReferences() bool {
	return e.CustomerID != "" && e.SubscriptionID != ""
}

// SubscriptionUpdated carries the provider's new view of a subscription
type SubscriptionUpdated struct {
	Snapshot subscription.Snapshot
}

// SubscriptionDeleted reports a subscription removed at the provider
type SubscriptionDeleted struct {
	SubscriptionID string
}

// InvoicePaid reports a successful invoice payment. SubscriptionID is empty
// when the invoice carries no usable subscription reference.
type InvoicePaid struct {
	InvoiceID      string
	SubscriptionID string
}

// Ignored is any event type without a handler
type Ignored struct {
	Type string
}

func (CheckoutCompleted) EventType() string   { return EventCheckoutCompleted }
func (SubscriptionUpdated) EventType() string { return EventSubscriptionUpdated }
func (SubscriptionDeleted) EventType() string { return EventSubscriptionDeleted }
func (InvoicePaid) EventType() string         { return EventInvoicePaid }
func (e Ignored) EventType() string           { return e.Type }

// VerifyEvent checks the Stripe-Signature header against the endpoint secret
// and decodes the event envelope.
func VerifyEvent(payload []byte, signatureHeader, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret,
		webhook.ConstructEventOptions{
			// Payload fields are decoded by ParseEvent, not by the SDK structs
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return stripe.Event{}, errors.SignatureInvalid("Stripe", err)
	}
	return event, nil
}

// ParseEvent converts a verified event into its typed form. Loosely typed
// fields are resolved here so handlers never inspect raw JSON.
func ParseEvent(event stripe.Event) (Event, error) {
	var raw json.RawMessage
	if event.Data != nil {
		raw = event.Data.Raw
	}

	switch string(event.Type) {
	case EventCheckoutCompleted:
		var s struct {
			ID           string `json:"id"`
			Customer     Ref    `json:"customer"`
			Subscription Ref    `json:"subscription"`
		}
		if err := decode(raw, &s); err != nil {
			return nil, err
		}
		return CheckoutCompleted{
			SessionID:      s.ID,
			CustomerID:     s.Customer.ID(),
			SubscriptionID: s.Subscription.ID(),
		}, nil

	case EventSubscriptionUpdated:
		var s rawSubscription
		if err := decode(raw, &s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			return nil, fmt.Errorf("subscription event without id")
		}
		return SubscriptionUpdated{Snapshot: s.snapshot()}, nil

	case EventSubscriptionDeleted:
		var s rawSubscription
		if err := decode(raw, &s); err != nil {
			return nil, err
		}
		if s.ID == "" {
			return nil, fmt.Errorf("subscription event without id")
		}
		return SubscriptionDeleted{SubscriptionID: s.ID}, nil

	case EventInvoicePaid:
		var inv struct {
			ID           string `json:"id"`
			Subscription Ref    `json:"subscription"`
			Parent       *struct {
				SubscriptionDetails *struct {
					Subscription Ref `json:"subscription"`
				} `json:"subscription_details"`
			} `json:"parent"`
		}
		if err := decode(raw, &inv); err != nil {
			return nil, err
		}
		subID := inv.Subscription.ID()
		if subID == "" && inv.Parent != nil && inv.Parent.SubscriptionDetails != nil {
			subID = inv.Parent.SubscriptionDetails.Subscription.ID()
		}
		return InvoicePaid{InvoiceID: inv.ID, SubscriptionID: subID}, nil
	}

	return Ignored{Type: string(event.Type)}, nil
}

func decode(raw json.RawMessage, dst interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("event has no data object")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode event object: %w", err)
	}
	return nil
}

// Ref is an expandable reference: either a bare ID string or an expanded
// object carrying an "id". Any other shape decodes to the empty reference.
type Ref struct {
	id string
}

// NewRef returns a reference to id
func NewRef(id string) Ref { return Ref{id: id} }

// ID returns the referenced ID or "" when absent
func (r Ref) ID() string { return r.id }

// UnmarshalJSON never fails; unexpected shapes leave the reference empty
func (r *Ref) UnmarshalJSON(b []byte) error {
	r.id = ""
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.id = s
		return nil
	}
	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && len(obj.ID) > 0 {
		if err := json.Unmarshal(obj.ID, &s); err == nil {
			r.id = s
		}
	}
	return nil
}

// Timestamp is a unix-seconds field that decodes to zero unless it is a
// positive JSON number.
type Timestamp int64

// UnmarshalJSON never fails; non-numeric values decode to zero
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = 0
	if len(b) == 0 || !(b[0] == '-' || (b[0] >= '0' && b[0] <= '9')) {
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return nil
	}
	v, err := n.Int64()
	if err != nil || v <= 0 {
		return nil
	}
	*t = Timestamp(v)
	return nil
}

type rawSubscription struct {
	ID       string `json:"id"`
	Customer Ref    `json:"customer"`
	Status   string `json:"status"`
	Items    *struct {
		Data []*struct {
			CurrentPeriodStart Timestamp `json:"current_period_start"`
			CurrentPeriodEnd   Timestamp `json:"current_period_end"`
			Plan               *struct {
				ID       string `json:"id"`
				Interval string `json:"interval"`
			} `json:"plan"`
		} `json:"data"`
	} `json:"items"`
}

func (s rawSubscription) snapshot() subscription.Snapshot {
	snap := subscription.Snapshot{
		StripeSubscriptionID: s.ID,
		CustomerID:           s.Customer.ID(),
		Status:               s.Status,
	}
	if s.Items == nil || len(s.Items.Data) == 0 || s.Items.Data[0] == nil {
		return snap
	}
	item := s.Items.Data[0]
	snap.CurrentPeriodStart = unixTime(int64(item.CurrentPeriodStart))
	snap.CurrentPeriodEnd = unixTime(int64(item.CurrentPeriodEnd))
	if item.Plan != nil {
		snap.Interval = item.Plan.Interval
		snap.PlanID = item.Plan.ID
	}
	return snap
}
