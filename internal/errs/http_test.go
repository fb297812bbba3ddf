package errs

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	custom := "MISSING_FIELD"
	cause := errors.New("connection refused")

	tests := []struct {
		name        string
		err         *HTTPError
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "bad request", err: NewBadRequestError("bad", false, nil, nil), wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST", wantMessage: "bad"},
		{name: "bad request custom code", err: NewBadRequestError("bad", false, &custom, nil), wantStatus: http.StatusBadRequest, wantCode: custom, wantMessage: "bad"},
		{name: "not found", err: NewNotFoundError("passenger 1 not found", false, nil), wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND", wantMessage: "passenger 1 not found"},
		{name: "method not allowed", err: NewMethodNotAllowedError("/x"), wantStatus: http.StatusMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED", wantMessage: "method not allowed for resource /x"},
		{name: "store", err: NewStoreError(cause), wantStatus: http.StatusInternalServerError, wantCode: CodeStoreError, wantMessage: "internal server error: connection refused"},
		{name: "predictor", err: NewPredictorError(cause), wantStatus: http.StatusInternalServerError, wantCode: CodePredictorError, wantMessage: "prediction failed: connection refused"},
		{name: "internal", err: NewInternalServerError(), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_SERVER_ERROR", wantMessage: "Internal Server Error"},
		{name: "validation", err: ValidationError(errors.New("Age is required")), wantStatus: http.StatusBadRequest, wantCode: "BAD_REQUEST", wantMessage: "Validation failed: Age is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.wantStatus || tt.err.Code != tt.wantCode || tt.err.Message != tt.wantMessage {
				t.Errorf("got %d %s %q", tt.err.Status, tt.err.Code, tt.err.Message)
			}
		})
	}
}

func TestHTTPErrorUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := NewStoreError(cause)

	if !errors.Is(err, cause) {
		t.Error("store error does not unwrap to its cause")
	}
	if !errors.Is(err, NewInternalServerError()) {
		t.Error("errors.Is should match any *HTTPError")
	}

	copied := err.WithMessage("other")
	if copied.Message != "other" || err.Message == "other" {
		t.Errorf("WithMessage mutated the original or did not apply: %q / %q", copied.Message, err.Message)
	}
	if !errors.Is(copied, cause) {
		t.Error("WithMessage dropped the cause")
	}
}

func TestHTTPErrorJSONOmitsCause(t *testing.T) {
	body, err := json.Marshal(NewStoreError(errors.New("secret dsn")))
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"code", "message", "status", "override", "errors"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing %q in %s", key, body)
		}
	}
	if len(fields) != 5 {
		t.Errorf("unexpected keys in %s", body)
	}
}
