package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"consignment-manager/internal/adapters/web"
	"consignment-manager/internal/app"
	"consignment-manager/internal/core"
)

// countStub satisfies ApplicationService for the one method under test;
// everything else panics via the embedded nil interface.
type countStub struct {
	app.ApplicationService
	got app.ProcessCountRequest
}

func (s *countStub) ProcessCount(_ context.Context, req app.ProcessCountRequest) (*core.CountResult, error) {
	s.got = req
	return &core.CountResult{QuantitySold: 3, SalesValue: "269.70", RemainingStock: 9}, nil
}

func TestProcessCountRoute_WiresURLAndBody(t *testing.T) {
	stub := &countStub{}
	handler := web.NewHandler(stub, "")

	body := strings.NewReader(`{"counted_quantity": 9}`)
	req := httptest.NewRequest(http.MethodPost, "/api/clients/4/stock/7/count", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	want := app.ProcessCountRequest{ClientID: 4, ProductID: 7, QuantityCounted: 9}
	if stub.got != want {
		t.Errorf("request = %+v, want %+v", stub.got, want)
	}

	var res core.CountResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.QuantitySold != 3 || res.RemainingStock != 9 {
		t.Errorf("result = %+v", res)
	}
}

func TestProcessCountRoute_RejectsBadProductID(t *testing.T) {
	handler := web.NewHandler(&countStub{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/clients/4/stock/abc/count",
		strings.NewReader(`{"counted_quantity": 9}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
