package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/service/newsletter"
	"github.com/ignite/newsletter/internal/service/subscription"
)

// SubscriptionService is the slice of the subscription service the
// handlers need.
type SubscriptionService interface {
	Subscribe(ctx context.Context, rawEmail, rawName string) error
	Confirm(ctx context.Context, token string) error
}

// NewsletterDispatcher triggers one newsletter dispatch run.
type NewsletterDispatcher interface {
	Dispatch(ctx context.Context) (*newsletter.Report, error)
}

// Handlers carries the HTTP endpoints and their service dependencies.
type Handlers struct {
	subs       SubscriptionService
	dispatcher NewsletterDispatcher
}

// NewHandlers creates the endpoint set.
func NewHandlers(subs SubscriptionService, dispatcher NewsletterDispatcher) *Handlers {
	return &Handlers{subs: subs, dispatcher: dispatcher}
}

// Subscribe handles POST /subscriptions with a form-encoded body of
// `name` and `email`. 200 on success, 400 on missing or invalid fields
// and on duplicate email, 500 on persistence failure.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "malformed form body")
		return
	}
	email := r.PostFormValue("email")
	name := r.PostFormValue("name")
	if email == "" || name == "" {
		httputil.BadRequest(w, "name and email are required")
		return
	}

	err := h.subs.Subscribe(r.Context(), email, name)
	switch {
	case err == nil:
		httputil.OK(w, map[string]string{"status": "pending_confirmation"})
	case errors.Is(err, subscription.ErrInvalidEmail),
		errors.Is(err, subscription.ErrInvalidName),
		errors.Is(err, subscription.ErrDuplicateEmail):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

// Confirm handles GET /subscriptions/confirm?subscription_token=<t>.
// 200 when the transition applied (idempotently), 400 on a missing or
// unknown token.
func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("subscription_token")
	if token == "" {
		httputil.BadRequest(w, "subscription_token is required")
		return
	}

	err := h.subs.Confirm(r.Context(), token)
	switch {
	case err == nil:
		httputil.OK(w, map[string]string{"status": "confirmed"})
	case errors.Is(err, subscription.ErrUnknownToken):
		httputil.BadRequest(w, "unknown subscription token")
	default:
		httputil.InternalError(w, err)
	}
}

// DispatchNewsletter handles POST /admin/newsletter. Per-recipient send
// failures are part of the 200 report; only a failed subscriber listing
// is the endpoint's own failure. 409 when a run is already in flight.
func (h *Handlers) DispatchNewsletter(w http.ResponseWriter, r *http.Request) {
	report, err := h.dispatcher.Dispatch(r.Context())
	switch {
	case err == nil:
		httputil.OK(w, report)
	case errors.Is(err, newsletter.ErrDispatchRunning):
		httputil.Conflict(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}
