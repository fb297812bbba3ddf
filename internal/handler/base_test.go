package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/rs/zerolog"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: config.DefaultConfig(),
		Logger: &logger,
	}
}

func decodeError(t *testing.T, resp events.APIGatewayProxyResponse) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
		t.Fatalf("error body %q is not JSON: %v", resp.Body, err)
	}
	return body
}

func TestHandleRunsValidationBeforeHandler(t *testing.T) {
	h := NewHandler(newTestServer())

	called := 0
	endpoint := Handle(h, "echo_id", func(_ context.Context, req *model.PassengerIDRequest) (*model.MessageResponse, error) {
		called++
		return &model.MessageResponse{Message: "got " + req.ID}, nil
	}, http.StatusOK, func() *model.PassengerIDRequest { return &model.PassengerIDRequest{} })

	resp := endpoint(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		PathParameters: map[string]string{model.PathParamID: "7"},
	})
	if resp.StatusCode != http.StatusOK || resp.Body != `{"message":"got 7"}` {
		t.Fatalf("response = %d %s", resp.StatusCode, resp.Body)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("Content-Type = %q", resp.Headers["Content-Type"])
	}

	resp = endpoint(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing id status = %d, want 400", resp.StatusCode)
	}
	if called != 1 {
		t.Errorf("handler ran %d times, want 1", called)
	}
}

func TestHandleShapesHandlerErrors(t *testing.T) {
	h := NewHandler(newTestServer())

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "http error", err: errs.NewNotFoundError("passenger 9 not found", false, nil), wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "store error", err: errs.NewStoreError(errors.New("down")), wantStatus: http.StatusInternalServerError, wantCode: errs.CodeStoreError},
		{name: "unknown error", err: errors.New("secret detail"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := Handle(h, "fails", func(context.Context, *model.ListPredictionsRequest) ([]model.PredictionView, error) {
				return nil, tt.err
			}, http.StatusOK, func() *model.ListPredictionsRequest { return &model.ListPredictionsRequest{} })

			resp := endpoint(context.Background(), events.APIGatewayProxyRequest{})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			body := decodeError(t, resp)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("body status = %d", body.Status)
			}
			if tt.name == "unknown error" && body.Message != "Internal Server Error" {
				t.Errorf("internal detail leaked: %q", body.Message)
			}
		})
	}
}

func TestRequestBody(t *testing.T) {
	plain := events.APIGatewayProxyRequest{Body: `{"a":1}`}
	if got, err := RequestBody(plain); err != nil || string(got) != `{"a":1}` {
		t.Errorf("plain body = %q, %v", got, err)
	}

	encoded := events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)),
		IsBase64Encoded: true,
	}
	if got, err := RequestBody(encoded); err != nil || string(got) != `{"a":1}` {
		t.Errorf("base64 body = %q, %v", got, err)
	}

	broken := events.APIGatewayProxyRequest{Body: "***", IsBase64Encoded: true}
	if _, err := RequestBody(broken); err == nil {
		t.Error("invalid base64 accepted")
	}
}

func TestBindRejectsBadBase64(t *testing.T) {
	err := bind(events.APIGatewayProxyRequest{Body: "***", IsBase64Encoded: true}, &model.CreatePredictionRequest{})

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Status != http.StatusBadRequest {
		t.Fatalf("bind = %v, want a 400", err)
	}
}

func TestJSONResponseEncodingFailure(t *testing.T) {
	resp := JSONResponse(http.StatusOK, map[string]any{"bad": make(chan int)})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Code != "INTERNAL_SERVER_ERROR" {
		t.Errorf("code = %q", body.Code)
	}
}
