package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shoplivehq/shoplive-backend/api/middleware"
	cartsvc "github.com/shoplivehq/shoplive-backend/internal/cart"
	checkoutsvc "github.com/shoplivehq/shoplive-backend/internal/checkout"
	paymentsvc "github.com/shoplivehq/shoplive-backend/internal/payments"
	"github.com/shoplivehq/shoplive-backend/pkg/config"
	"github.com/shoplivehq/shoplive-backend/pkg/enums"
)

type stubGateway struct {
	confirmStatus enums.PaymentIntentStatus
}

func (g *stubGateway) CreateIntent(_ context.Context, input paymentsvc.CreateIntentInput) (*paymentsvc.Intent, error) {
	return &paymentsvc.Intent{ID: "pi_test", Amount: input.AmountCents, Status: enums.PaymentIntentStatusRequiresConfirmation}, nil
}

func (g *stubGateway) ConfirmIntent(_ context.Context, input paymentsvc.ConfirmIntentInput) (*paymentsvc.Intent, error) {
	status := g.confirmStatus
	if status == "" {
		status = enums.PaymentIntentStatusSucceeded
	}
	return &paymentsvc.Intent{ID: input.IntentID, Status: status}, nil
}

func newTestService(t *testing.T, carts cartsvc.Service, gateway *stubGateway) checkoutsvc.Service {
	t.Helper()
	svc, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Config: config.CheckoutConfig{
			TaxRateBps:                 800,
			FreeShippingThresholdCents: 5000,
			FlatShippingCents:          999,
			OrderNumberPrefix:          "SL",
			Currency:                   "usd",
		},
		Carts:   carts,
		Gateway: gateway,
	})
	if err != nil {
		t.Fatalf("new checkout service: %v", err)
	}
	return svc
}

func sessionRequest(method, target, sessionID, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	return req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
}

func decodeSession(t *testing.T, resp *httptest.ResponseRecorder) sessionWithQuote {
	t.Helper()
	var envelope struct {
		Data sessionWithQuote `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestCheckoutStartCreatesReviewSession(t *testing.T) {
	carts := cartsvc.NewService(nil)
	svc := newTestService(t, carts, &stubGateway{})
	handler := CheckoutStart(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", "sess-1", ""))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	data := decodeSession(t, resp)
	if data.Step != "review" {
		t.Fatalf("expected review step, got %q", data.Step)
	}
}

func TestCheckoutConfirmEmptyCartRejected(t *testing.T) {
	carts := cartsvc.NewService(nil)
	svc := newTestService(t, carts, &stubGateway{})

	start := httptest.NewRecorder()
	CheckoutStart(svc, nil).ServeHTTP(start, sessionRequest(http.MethodPost, "/api/v1/checkout", "sess-1", ""))

	resp := httptest.NewRecorder()
	CheckoutConfirm(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout/confirm", "sess-1", ""))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutFullFlow(t *testing.T) {
	carts := cartsvc.NewService(nil)
	store := carts.Store("sess-1")
	store.AddItem(cartsvc.Item{ID: "hoodie", Name: "Hoodie", UnitPriceCents: 2000}, 2)
	store.AddItem(cartsvc.Item{ID: "cap", Name: "Cap", UnitPriceCents: 1500}, 1)

	svc := newTestService(t, carts, &stubGateway{})

	steps := []struct {
		name    string
		handler http.HandlerFunc
		target  string
		body    string
		status  int
		step    string
	}{
		{"start", CheckoutStart(svc, nil), "/api/v1/checkout", "", http.StatusCreated, "review"},
		{"confirm", CheckoutConfirm(svc, nil), "/api/v1/checkout/confirm", "", http.StatusOK, "payment"},
		{"select", CheckoutSelectMethod(svc, nil), "/api/v1/checkout/payment-method", `{"payment_method_id":"pm_1"}`, http.StatusOK, "payment"},
		{"submit", CheckoutSubmit(svc, nil), "/api/v1/checkout/submit", "", http.StatusOK, "success"},
	}

	for _, step := range steps {
		resp := httptest.NewRecorder()
		step.handler.ServeHTTP(resp, sessionRequest(http.MethodPost, step.target, "sess-1", step.body))
		if resp.Code != step.status {
			t.Fatalf("%s: expected %d got %d: %s", step.name, step.status, resp.Code, resp.Body.String())
		}
		data := decodeSession(t, resp)
		if data.Step != step.step {
			t.Fatalf("%s: expected step %q got %q", step.name, step.step, data.Step)
		}
		if step.name == "submit" && !strings.HasPrefix(data.OrderNumber, "SL-") {
			t.Fatalf("submit: missing order number in %+v", data)
		}
	}

	if store.TotalItems() != 0 {
		t.Fatalf("cart should be cleared after success, has %d items", store.TotalItems())
	}
}

func TestCheckoutFetchIncludesQuote(t *testing.T) {
	carts := cartsvc.NewService(nil)
	carts.Store("sess-1").AddItem(cartsvc.Item{ID: "hoodie", Name: "Hoodie", UnitPriceCents: 2000}, 2)
	svc := newTestService(t, carts, &stubGateway{})

	start := httptest.NewRecorder()
	CheckoutStart(svc, nil).ServeHTTP(start, sessionRequest(http.MethodPost, "/api/v1/checkout", "sess-1", ""))

	resp := httptest.NewRecorder()
	CheckoutFetch(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodGet, "/api/v1/checkout", "sess-1", ""))

	data := decodeSession(t, resp)
	if data.Quote.SubtotalCents != 4000 {
		t.Fatalf("unexpected subtotal %d", data.Quote.SubtotalCents)
	}
	// 8% tax and flat shipping under the free threshold
	if data.Quote.TaxCents != 320 || data.Quote.ShippingCents != 999 {
		t.Fatalf("unexpected quote %+v", data.Quote)
	}
	if data.Quote.Total != "53.19" {
		t.Fatalf("unexpected total %q", data.Quote.Total)
	}
}

func TestCheckoutSubmitDeclinedSurfacesTypedError(t *testing.T) {
	carts := cartsvc.NewService(nil)
	carts.Store("sess-1").AddItem(cartsvc.Item{ID: "hoodie", Name: "Hoodie", UnitPriceCents: 2000}, 1)
	svc := newTestService(t, carts, &stubGateway{confirmStatus: enums.PaymentIntentStatusRequiresPaymentMethod})

	prep := []struct {
		handler http.HandlerFunc
		target  string
		body    string
	}{
		{CheckoutStart(svc, nil), "/api/v1/checkout", ""},
		{CheckoutConfirm(svc, nil), "/api/v1/checkout/confirm", ""},
		{CheckoutSelectMethod(svc, nil), "/api/v1/checkout/payment-method", `{"payment_method_id":"pm_1"}`},
	}
	for _, step := range prep {
		resp := httptest.NewRecorder()
		step.handler.ServeHTTP(resp, sessionRequest(http.MethodPost, step.target, "sess-1", step.body))
		if resp.Code >= 400 {
			t.Fatalf("setup %s failed: %d %s", step.target, resp.Code, resp.Body.String())
		}
	}

	resp := httptest.NewRecorder()
	CheckoutSubmit(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout/submit", "sess-1", ""))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if envelope.Error.Code != "PAYMENT_DECLINED" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}

	if carts.Store("sess-1").TotalItems() != 1 {
		t.Fatal("cart should survive a declined payment")
	}
}

func TestCheckoutCloseUnknownSessionIsNoOp(t *testing.T) {
	svc := newTestService(t, cartsvc.NewService(nil), &stubGateway{})

	resp := httptest.NewRecorder()
	CheckoutClose(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout/close", "sess-404", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
