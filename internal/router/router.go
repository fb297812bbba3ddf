// Package router maps (method, resource) pairs onto handler endpoints.
//
// The same Router serves both transports: cmd/lambda hands it API Gateway
// proxy events directly, and cmd/api puts Echo in front of it, turning each
// HTTP request into the same envelope.
package router

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/deppfellow/survival-api/internal/errs"
	"github.com/deppfellow/survival-api/internal/handler"
	"github.com/deppfellow/survival-api/internal/logger"
	"github.com/deppfellow/survival-api/internal/metrics"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/rs/zerolog"
)

// Resource templates served by the API.
const (
	ResourceCollection = "/sobreviventes"
	ResourceItem       = "/sobreviventes/{" + model.PathParamID + "}"
)

// unmatchedResource labels requests no route served, so arbitrary paths do
// not create new metric series.
const unmatchedResource = "unmatched"

type routeKey struct {
	method   string
	resource string
}

// Router dispatches request envelopes to endpoints.
type Router struct {
	server *server.Server
	routes map[routeKey]handler.Endpoint
}

// New builds the route table.
func New(s *server.Server, h *handler.Handlers) *Router {
	r := &Router{
		server: s,
		routes: make(map[routeKey]handler.Endpoint),
	}

	r.add(http.MethodPost, ResourceCollection, h.Prediction.CreatePrediction())
	r.add(http.MethodGet, ResourceCollection, h.Prediction.ListPredictions())
	r.add(http.MethodGet, ResourceItem, h.Prediction.GetPrediction())
	r.add(http.MethodDelete, ResourceItem, h.Prediction.DeletePrediction())

	return r
}

func (r *Router) add(method, resource string, endpoint handler.Endpoint) {
	r.routes[routeKey{method: method, resource: resource}] = endpoint
}

// Dispatch routes one envelope and always produces a response. A
// method/resource pair without a route gets a 405 naming the resource.
//
// Envelopes without a Resource template (e.g. built by hand or by a
// proxy that only forwards the path) are resolved from Path.
func (r *Router) Dispatch(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	if req.Resource == "" {
		req = resolveResource(req)
	}

	endpoint, ok := r.routes[routeKey{method: strings.ToUpper(req.HTTPMethod), resource: req.Resource}]
	if !ok {
		resp := handler.ErrorResponse(errs.NewMethodNotAllowedError(req.Resource))
		metrics.RequestsTotal.WithLabelValues(req.HTTPMethod, unmatchedResource, strconv.Itoa(resp.StatusCode)).Inc()
		return resp
	}

	resp := endpoint(ctx, req)
	metrics.RequestsTotal.WithLabelValues(req.HTTPMethod, req.Resource, strconv.Itoa(resp.StatusCode)).Inc()
	return resp
}

// Handle is the Lambda entry point. It attaches a request-scoped logger,
// dispatches, and writes one "API" log line per invocation.
//
// Failures are always expressed as responses, so the returned error is nil.
func (r *Router) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	requestID := req.RequestContext.RequestID
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		requestID = lc.AwsRequestID
	}

	reqLogger := logger.FromContext(ctx, r.server.Logger).With().
		Str("request_id", requestID).
		Str("method", req.HTTPMethod).
		Str("path", req.Resource).
		Logger()
	ctx = reqLogger.WithContext(ctx)

	resp := r.Dispatch(ctx, req)

	var e *zerolog.Event
	switch {
	case resp.StatusCode >= 500:
		e = reqLogger.Error()
	case resp.StatusCode >= 400:
		e = reqLogger.Warn()
	default:
		e = reqLogger.Info()
	}

	e.
		Dur("latency", time.Since(start)).
		Int("status", resp.StatusCode).
		Str("uri", req.Path).
		Str("ip", req.RequestContext.Identity.SourceIP).
		Str("user_agent", req.RequestContext.Identity.UserAgent).
		Msg("API")

	return resp, nil
}

// resolveResource fills Resource (and the id path parameter) from Path.
func resolveResource(req events.APIGatewayProxyRequest) events.APIGatewayProxyRequest {
	path := strings.TrimSuffix(req.Path, "/")
	req.Resource = path

	if path == ResourceCollection {
		return req
	}

	rest, found := strings.CutPrefix(path, ResourceCollection+"/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return req
	}

	id, err := url.PathUnescape(rest)
	if err != nil {
		return req
	}

	params := make(map[string]string, len(req.PathParameters)+1)
	for k, v := range req.PathParameters {
		params[k] = v
	}
	params[model.PathParamID] = id

	req.Resource = ResourceItem
	req.PathParameters = params
	return req
}
