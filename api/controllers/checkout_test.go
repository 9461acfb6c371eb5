package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/gearmart-backend/internal/checkout"
	"github.com/angelmondragon/gearmart-backend/internal/profile"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
)

func TestCheckoutCreate(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	profiles := &stubProfileProvider{profile: profile.Profile{
		CustomerName:     "Ana García",
		ShippingAddress:  "Calle 10 #20-30",
		DiscountEligible: true,
	}}

	makeRequest := func(svc checkout.Service, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CheckoutCreate(svc, profiles, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("success with profile defaults", func(t *testing.T) {
		stub := &stubCheckoutService{order: &checkout.Order{TransactionID: "TRX-ABCDEF12"}}
		rec := makeRequest(stub, `{"payment_method":"credit"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastRequest.CustomerName != "Ana García" {
			t.Fatalf("expected profile default customer, got %q", stub.lastRequest.CustomerName)
		}
		if !stub.lastRequest.DiscountEligible {
			t.Fatal("expected discount eligibility from profile")
		}
	})

	t.Run("body overrides customer details", func(t *testing.T) {
		stub := &stubCheckoutService{order: &checkout.Order{TransactionID: "TRX-ABCDEF12"}}
		rec := makeRequest(stub, `{"payment_method":"debit","customer_name":"Luis","shipping_address":"Carrera 7"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if stub.lastRequest.CustomerName != "Luis" || stub.lastRequest.ShippingAddress != "Carrera 7" {
			t.Fatalf("expected overrides applied, got %+v", stub.lastRequest)
		}
	})

	t.Run("unknown payment method rejected", func(t *testing.T) {
		stub := &stubCheckoutService{}
		rec := makeRequest(stub, `{"payment_method":"cash"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.calls != 0 {
			t.Fatal("service must not be invoked on invalid input")
		}
	})

	t.Run("in-flight checkout rejected", func(t *testing.T) {
		stub := &stubCheckoutService{err: checkout.ErrCheckoutInProgress}
		rec := makeRequest(stub, `{"payment_method":"credit"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})
}

func TestOrdersLast(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	t.Run("no completed order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/last", nil)
		rec := httptest.NewRecorder()
		OrdersLast(&stubCheckoutService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns last order", func(t *testing.T) {
		stub := &stubCheckoutService{last: &checkout.Order{TransactionID: "TRX-ABCDEF12"}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/last", nil)
		rec := httptest.NewRecorder()
		OrdersLast(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "TRX-ABCDEF12") {
			t.Fatalf("expected transaction id in body, got %s", rec.Body.String())
		}
	})
}

type stubCheckoutService struct {
	order       *checkout.Order
	last        *checkout.Order
	err         error
	calls       int
	lastRequest checkout.Request
}

func (s *stubCheckoutService) Execute(ctx context.Context, req checkout.Request) (*checkout.Order, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubCheckoutService) LastOrder() *checkout.Order {
	return s.last
}

func (s *stubCheckoutService) State() checkout.State {
	return checkout.StateIdle
}

type stubProfileProvider struct {
	profile profile.Profile
}

func (s *stubProfileProvider) Current(ctx context.Context) (profile.Profile, error) {
	return s.profile, nil
}
