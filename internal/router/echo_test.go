package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/middleware"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/labstack/echo/v4"
)

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEchoServesPredictionRoutes(t *testing.T) {
	app := newTestApp(t)
	e := NewRouter(app.server, app.handlers, app.router)

	rec := serve(e, http.MethodPost, "/sobreviventes", examplePassenger)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != `{"PassengerId":"1001","SurvivalProbability":0}` {
		t.Errorf("POST body = %s", got)
	}
	if rec.Header().Get(echo.HeaderContentType) != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get(echo.HeaderContentType))
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response has no request id")
	}

	rec = serve(e, http.MethodGet, "/sobreviventes/1001", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, body %s", rec.Code, rec.Body.String())
	}
	var view model.PredictionView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.PassengerID != "1001" || view.Fare != 7.25 {
		t.Errorf("view = %+v", view)
	}

	rec = serve(e, http.MethodGet, "/sobreviventes", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "[{") {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(e, http.MethodDelete, "/sobreviventes/1001", "")
	if rec.Code != http.StatusOK {
		t.Errorf("DELETE status = %d", rec.Code)
	}

	rec = serve(e, http.MethodGet, "/sobreviventes/1001", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d", rec.Code)
	}
}

func TestEchoMethodNotAllowed(t *testing.T) {
	app := newTestApp(t)
	e := NewRouter(app.server, app.handlers, app.router)

	tests := []struct {
		method       string
		target       string
		wantResource string
	}{
		{method: http.MethodPut, target: "/sobreviventes", wantResource: ResourceCollection},
		{method: http.MethodPatch, target: "/sobreviventes/1001", wantResource: ResourceItem},
		{method: http.MethodGet, target: "/passengers", wantResource: "/passengers"},
		{method: http.MethodPost, target: "/sobreviventes/1/extra", wantResource: "/sobreviventes/1/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := serve(e, tt.method, tt.target, "")
			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405 (body %s)", rec.Code, rec.Body.String())
			}

			var body errs.HTTPError
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != "method not allowed for resource "+tt.wantResource {
				t.Errorf("message = %q", body.Message)
			}
		})
	}
}

func TestEchoSystemRoutes(t *testing.T) {
	app := newTestApp(t)
	e := NewRouter(app.server, app.handlers, app.router)

	rec := serve(e, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/status = %d %s", rec.Code, rec.Body.String())
	}
	var health map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if health["status"] != "healthy" || health["model_version"] != app.server.Predictor.Version() {
		t.Errorf("status body = %v", health)
	}

	rec = serve(e, http.MethodGet, "/openapi.json", "")
	if rec.Code != http.StatusOK || !json.Valid(rec.Body.Bytes()) {
		t.Errorf("/openapi.json = %d", rec.Code)
	}

	rec = serve(e, http.MethodGet, "/docs", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/openapi.json") {
		t.Errorf("/docs = %d", rec.Code)
	}

	// A dispatched request gives the request counter a series to export.
	serve(e, http.MethodGet, "/sobreviventes", "")
	rec = serve(e, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "survival_api_requests_total") {
		t.Errorf("/metrics = %d", rec.Code)
	}
}

func TestEchoRateLimit(t *testing.T) {
	app := newTestApp(t)
	app.server.Config.Server.RateLimit = 1
	e := NewRouter(app.server, app.handlers, app.router)

	if rec := serve(e, http.MethodGet, "/sobreviventes", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec := serve(e, http.MethodGet, "/sobreviventes", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}

	var body errs.HTTPError
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "TOO_MANY_REQUESTS" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestEchoPathToResource(t *testing.T) {
	if got := echoPathToResource("/sobreviventes/:id"); got != ResourceItem {
		t.Errorf("got %q, want %q", got, ResourceItem)
	}
	if got := echoPathToResource(ResourceCollection); got != ResourceCollection {
		t.Errorf("got %q", got)
	}
}
