package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/logger"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/deppfellow/survival-api/internal/validation"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
//
// It is embedded by concrete handlers (e.g. PredictionHandler, HealthHandler)
// so they can access shared resources via *server.Server.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// Endpoint serves one routed request envelope. It never fails: every error
// has already been shaped into a response when it returns.
type Endpoint func(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc represents a typed endpoint function that:
//
// - receives a validated request payload (Req)
// - returns a response (Res) or an error
//
// Req is typically a POINTER type, e.g. *model.CreatePredictionRequest,
// because binding populates its fields.
type HandlerFunc[Req validation.Validatable, Res any] func(ctx context.Context, req Req) (Res, error)

// handleRequest is the shared execution pipeline for all endpoints.
//
// It centralizes:
//
// - request binding + validation
// - structured logging (with request context)
// - New Relic attributes and error reporting
// - timing (validation duration, handler duration, total duration)
// - response shaping (JSON success body or HTTPError body)
func (h Handler) handleRequest(
	ctx context.Context,
	envelope events.APIGatewayProxyRequest,
	name string,
	req validation.Validatable,
	handler func(ctx context.Context) (any, error),
	status int,
) events.APIGatewayProxyResponse {
	start := time.Now()

	// New Relic transaction is set by the tracing middleware (HTTP only).
	txn := newrelic.FromContext(ctx)
	if txn != nil {
		txn.AddAttribute("handler.name", name)
	}

	// Use the request-scoped logger set by the transport. It should already
	// include correlation fields (request_id, trace ids).
	reqLogger := logger.FromContext(ctx, h.server.Logger).With().
		Str("operation", name).
		Str("method", envelope.HTTPMethod).
		Str("resource", envelope.Resource).
		Str("path", envelope.Path).
		Logger()
	ctx = reqLogger.WithContext(ctx)

	reqLogger.Info().Msg("handling request")

	// ---------------- Validation phase ---------------------------------------
	validationStart := time.Now()

	if err := bind(envelope, req); err != nil {
		validationDuration := time.Since(validationStart)

		reqLogger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return ErrorResponse(err)
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	reqLogger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	// ---------------- Handler execution phase --------------------------------
	handlerStart := time.Now()
	result, err := handler(ctx)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		reqLogger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return ErrorResponse(err)
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	reqLogger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return JSONResponse(status, result)
}

// Handle wraps a typed handler with validation, error handling, logging and
// tracing, and returns it as an Endpoint for the router.
//
// newReq is called once per request so concurrent requests never share a
// payload value.
//
// Usage pattern:
//
//	handler.Handle(h, "create_prediction", svc.Create, http.StatusOK, func() *model.CreatePredictionRequest {
//		return &model.CreatePredictionRequest{}
//	})
func Handle[Req validation.Validatable, Res any](
	h Handler,
	name string,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) Endpoint {
	return func(ctx context.Context, envelope events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
		req := newReq()
		return h.handleRequest(ctx, envelope, name, req, func(ctx context.Context) (any, error) {
			return handler(ctx, req)
		}, status)
	}
}

// bind fills req from the part of the envelope it is read from: the JSON
// body for Bindable payloads, the path parameters for ParamsBindable ones.
func bind(envelope events.APIGatewayProxyRequest, req validation.Validatable) error {
	switch payload := req.(type) {
	case validation.Bindable:
		body, err := RequestBody(envelope)
		if err != nil {
			return errs.NewBadRequestError("request body is not valid base64", false, nil, nil)
		}
		return validation.BindAndValidate(body, payload)

	case validation.ParamsBindable:
		return validation.BindParamsAndValidate(envelope.PathParameters, payload)

	default:
		if err := req.Validate(); err != nil {
			return errs.ValidationError(err)
		}
		return nil
	}
}

// RequestBody returns the raw body, decoding it when API Gateway flagged it
// as base64.
func RequestBody(envelope events.APIGatewayProxyRequest) ([]byte, error) {
	if !envelope.IsBase64Encoded {
		return []byte(envelope.Body), nil
	}
	return base64.StdEncoding.DecodeString(envelope.Body)
}

// --- Response shaping ---------------------------------------------------------

const internalErrorBody = `{"code":"INTERNAL_SERVER_ERROR","message":"Internal Server Error","status":500,"override":false,"errors":null}`

// responseHeaders returns a fresh header map; transports may mutate it.
func responseHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

// JSONResponse serializes body with the given status.
func JSONResponse(status int, body any) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    responseHeaders(),
			Body:       internalErrorBody,
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(),
		Body:       string(payload),
	}
}

// ErrorResponse is the final error funnel for envelope responses.
//
// *errs.HTTPError values keep their status and shape; anything else becomes
// a generic 500 so internal details never reach the client.
func ErrorResponse(err error) events.APIGatewayProxyResponse {
	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		httpErr = errs.NewInternalServerError()
	}
	return JSONResponse(httpErr.Status, httpErr)
}
