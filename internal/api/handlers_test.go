package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/service/newsletter"
	"github.com/ignite/newsletter/internal/service/subscription"
)

type stubSubscriptions struct {
	subscribeErr error
	confirmErr   error
	subscribed   [][2]string // (email, name)
	confirmed    []string
}

func (s *stubSubscriptions) Subscribe(_ context.Context, email, name string) error {
	if s.subscribeErr != nil {
		return s.subscribeErr
	}
	s.subscribed = append(s.subscribed, [2]string{email, name})
	return nil
}

func (s *stubSubscriptions) Confirm(_ context.Context, token string) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmed = append(s.confirmed, token)
	return nil
}

type stubDispatcher struct {
	report *newsletter.Report
	err    error
}

func (s *stubDispatcher) Dispatch(context.Context) (*newsletter.Report, error) {
	return s.report, s.err
}

func newTestServer(subs *stubSubscriptions, disp *stubDispatcher) http.Handler {
	return SetupRoutes(NewHandlers(subs, disp), nil)
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSubscribeReturns200(t *testing.T) {
	subs := &stubSubscriptions{}
	handler := newTestServer(subs, &stubDispatcher{})

	rec := postForm(t, handler, "/subscriptions", url.Values{
		"name":  {"le guin"},
		"email": {"ursula_le_guin@gmail.com"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, subs.subscribed, 1)
	assert.Equal(t, "ursula_le_guin@gmail.com", subs.subscribed[0][0])
	assert.Equal(t, "le guin", subs.subscribed[0][1])
}

func TestSubscribeMissingFields(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
	}{
		{"missing name", url.Values{"email": {"ursula_le_guin@gmail.com"}}},
		{"missing email", url.Values{"name": {"le guin"}}},
		{"missing both", url.Values{}},
		{"empty name", url.Values{"name": {""}, "email": {"ursula_le_guin@gmail.com"}}},
		{"empty email", url.Values{"name": {"le guin"}, "email": {""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subs := &stubSubscriptions{}
			handler := newTestServer(subs, &stubDispatcher{})

			rec := postForm(t, handler, "/subscriptions", tc.form)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, subs.subscribed, "invalid input must not reach the service")
		})
	}
}

func TestSubscribeValidationErrorsMapTo400(t *testing.T) {
	for _, sentinel := range []error{
		subscription.ErrInvalidEmail,
		subscription.ErrInvalidName,
		subscription.ErrDuplicateEmail,
	} {
		subs := &stubSubscriptions{subscribeErr: sentinel}
		handler := newTestServer(subs, &stubDispatcher{})

		rec := postForm(t, handler, "/subscriptions", url.Values{
			"name":  {"le guin"},
			"email": {"ursula_le_guin@gmail.com"},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code, "sentinel: %v", sentinel)
	}
}

func TestSubscribePersistenceFailureMapsTo500(t *testing.T) {
	subs := &stubSubscriptions{subscribeErr: errors.New("connection refused")}
	handler := newTestServer(subs, &stubDispatcher{})

	rec := postForm(t, handler, "/subscriptions", url.Values{
		"name":  {"le guin"},
		"email": {"ursula_le_guin@gmail.com"},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConfirmReturns200(t *testing.T) {
	subs := &stubSubscriptions{}
	handler := newTestServer(subs, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/confirm?subscription_token=abc123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc123"}, subs.confirmed)
}

func TestConfirmMissingToken(t *testing.T) {
	handler := newTestServer(&stubSubscriptions{}, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/confirm", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmUnknownToken(t *testing.T) {
	subs := &stubSubscriptions{confirmErr: subscription.ErrUnknownToken}
	handler := newTestServer(subs, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/confirm?subscription_token=garbage", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfirmStoreFailureMapsTo500(t *testing.T) {
	subs := &stubSubscriptions{confirmErr: errors.New("connection refused")}
	handler := newTestServer(subs, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/subscriptions/confirm?subscription_token=abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDispatchNewsletterReportsPartialFailures(t *testing.T) {
	disp := &stubDispatcher{report: &newsletter.Report{
		Attempted: 3, Sent: 2, Failed: 1,
		Failures: []newsletter.Failure{{SubscriberID: "sub-2", Error: "email provider timed out"}},
	}}
	handler := newTestServer(&stubSubscriptions{}, disp)

	req := httptest.NewRequest(http.MethodPost, "/admin/newsletter", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Per-recipient failures are report content, not an endpoint failure.
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Attempted int `json:"attempted"`
		Sent      int `json:"sent"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Attempted)
	assert.Equal(t, 2, got.Sent)
	assert.Equal(t, 1, got.Failed)
}

func TestDispatchNewsletterListingFailureMapsTo500(t *testing.T) {
	disp := &stubDispatcher{err: errors.New("list confirmed subscribers: store unavailable")}
	handler := newTestServer(&stubSubscriptions{}, disp)

	req := httptest.NewRequest(http.MethodPost, "/admin/newsletter", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDispatchNewsletterAlreadyRunningMapsTo409(t *testing.T) {
	disp := &stubDispatcher{err: newsletter.ErrDispatchRunning}
	handler := newTestServer(&stubSubscriptions{}, disp)

	req := httptest.NewRequest(http.MethodPost, "/admin/newsletter", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealth(t *testing.T) {
	handler := newTestServer(&stubSubscriptions{}, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
