package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/catalog"
	"github.com/launchset/gym-booking/internal/pricing"
	"github.com/launchset/gym-booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CheckoutServiceMock struct {
	calls   int
	lastReq *domain.CheckoutSessionRequest
	result  *domain.CheckoutSessionResult
	err     error
}

func (m *CheckoutServiceMock) CreateSession(_ context.Context, req *domain.CheckoutSessionRequest) (*domain.CheckoutSessionResult, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBuilder() *service.BookingBuilder {
	return service.NewBookingBuilder(catalog.Default(), pricing.NewEngine(pricing.DefaultPromoBook(), "gbp"))
}

func newCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return NewCheckoutHandler(newTestBuilder(), svc, 5*time.Second, discardLogger())
}

const validBody = `{"className":"BoxFit Fundamentals","dateISO":"2025-03-14","time":"18:30","qty":2,"email":"ann@example.com","name":"Ann Lee"}`

func postCheckout(h *CheckoutHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		request.Header.Set(k, v)
	}
	h.CreateCheckoutSession(recorder, request)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	return resp
}

func TestCreateCheckoutSession_Success(t *testing.T) {
	svc := &CheckoutServiceMock{result: &domain.CheckoutSessionResult{SessionID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}}
	recorder := postCheckout(newCheckoutHandler(svc), validBody, nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CheckoutSessionResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", resp.URL)

	require.Equal(t, 1, svc.calls)
	assert.Equal(t, "boxfit", svc.lastReq.OfferingID)
	assert.Equal(t, 2, svc.lastReq.Quantity)
}

func TestCreateCheckoutSession_IgnoresClientPrice(t *testing.T) {
	svc := &CheckoutServiceMock{result: &domain.CheckoutSessionResult{URL: "https://x"}}
	body := `{"className":"BoxFit Fundamentals","dateISO":"2025-03-14","time":"18:30","qty":"1","unit_amount":1,"currency":"usd","email":"ann@example.com","name":"Ann"}`

	recorder := postCheckout(newCheckoutHandler(svc), body, nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(1000), svc.lastReq.UnitAmount)
	assert.Equal(t, "gbp", svc.lastReq.Currency)
	assert.Equal(t, 1, svc.lastReq.Quantity)
}

func TestCreateCheckoutSession_MissingFields(t *testing.T) {
	svc := &CheckoutServiceMock{}
	body := `{"className":"BoxFit Fundamentals","dateISO":"2025-03-14","time":"18:30"}`

	recorder := postCheckout(newCheckoutHandler(svc), body, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	resp := decodeError(t, recorder)
	assert.Equal(t, "Missing required fields", resp.Error)
	assert.Equal(t, "missing_fields", resp.Code)
	assert.Equal(t, "email,name", resp.Details)
	assert.Equal(t, 0, svc.calls)
}

func TestCreateCheckoutSession_MissingClassName_NoServiceCall(t *testing.T) {
	svc := &CheckoutServiceMock{}
	body := `{"dateISO":"2025-03-14","time":"18:30","email":"ann@example.com","name":"Ann"}`

	recorder := postCheckout(newCheckoutHandler(svc), body, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "className", decodeError(t, recorder).Details)
	assert.Equal(t, 0, svc.calls)
}

func TestCreateCheckoutSession_InvalidField(t *testing.T) {
	svc := &CheckoutServiceMock{}
	body := `{"classId":"boxfit","dateISO":"2025-03-14","time":"04:00","email":"ann@example.com","name":"Ann"}`

	recorder := postCheckout(newCheckoutHandler(svc), body, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	resp := decodeError(t, recorder)
	assert.Equal(t, "invalid_field", resp.Code)
	assert.Equal(t, "time", resp.Details)
}

func TestCreateCheckoutSession_UnknownClass(t *testing.T) {
	svc := &CheckoutServiceMock{}
	body := `{"className":"Yoga","dateISO":"2025-03-14","time":"18:30","email":"ann@example.com","name":"Ann"}`

	recorder := postCheckout(newCheckoutHandler(svc), body, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "unknown_class", decodeError(t, recorder).Code)
}

func TestCreateCheckoutSession_InvalidJSON(t *testing.T) {
	recorder := postCheckout(newCheckoutHandler(&CheckoutServiceMock{}), `{"className":`, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "invalid_request", decodeError(t, recorder).Code)
}

func TestCreateCheckoutSession_ProviderError(t *testing.T) {
	svc := &CheckoutServiceMock{err: &service.SessionError{
		Kind: service.SessionErrorProvider,
		Err:  errors.New("No such API key: sk_test_bad"),
	}}

	recorder := postCheckout(newCheckoutHandler(svc), validBody, nil)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	resp := decodeError(t, recorder)
	assert.Equal(t, "Unable to create checkout session", resp.Error)
	assert.Equal(t, "provider_error", resp.Code)
	assert.NotContains(t, recorder.Body.String(), "sk_test_bad")
}

func TestCreateCheckoutSession_ServiceInvalidRequest(t *testing.T) {
	svc := &CheckoutServiceMock{err: &service.SessionError{
		Kind:          service.SessionErrorInvalidRequest,
		MissingFields: []string{"email"},
	}}

	recorder := postCheckout(newCheckoutHandler(svc), validBody, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "email", decodeError(t, recorder).Details)
}

func TestCreateCheckoutSession_IdempotencyConflict(t *testing.T) {
	svc := &CheckoutServiceMock{err: &service.SessionError{Kind: service.SessionErrorConflict}}

	recorder := postCheckout(newCheckoutHandler(svc), validBody, map[string]string{IdempotencyKeyHeader: "reused"})

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "idempotency_conflict", decodeError(t, recorder).Code)
}

func TestCreateCheckoutSession_IdempotencyKey(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
		want    string
	}{
		{
			name: "from body",
			body: strings.TrimSuffix(validBody, "}") + `,"idempotencyKey":"body-key"}`,
			want: "body-key",
		},
		{
			name:    "from header",
			body:    validBody,
			headers: map[string]string{IdempotencyKeyHeader: "header-key"},
			want:    "header-key",
		},
		{
			name:    "body wins over header",
			body:    strings.TrimSuffix(validBody, "}") + `,"idempotencyKey":"body-key"}`,
			headers: map[string]string{IdempotencyKeyHeader: "header-key"},
			want:    "body-key",
		},
		{
			name: "absent",
			body: validBody,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &CheckoutServiceMock{result: &domain.CheckoutSessionResult{URL: "https://x"}}
			recorder := postCheckout(newCheckoutHandler(svc), tt.body, tt.headers)

			require.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tt.want, svc.lastReq.IdempotencyKey)
		})
	}
}

func TestRawQuantity(t *testing.T) {
	assert.Equal(t, "", rawQuantity(nil))
	assert.Equal(t, "", rawQuantity(json.RawMessage("null")))
	assert.Equal(t, "3", rawQuantity(json.RawMessage("3")))
	assert.Equal(t, "2.5", rawQuantity(json.RawMessage("2.5")))
	assert.Equal(t, "4", rawQuantity(json.RawMessage(`"4"`)))
	assert.Equal(t, "true", rawQuantity(json.RawMessage("true")))
}
