package router

import (
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/deppfellow/survival-api/internal/handler"
	"github.com/deppfellow/survival-api/internal/middleware"
	"github.com/deppfellow/survival-api/internal/model"
	"github.com/deppfellow/survival-api/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// NewRouter builds the Echo instance used by cmd/api.
//
// Middleware order matters:
//   - RequestID and the New Relic transaction come first so the logger built
//     by ContextEnhancer can carry request and trace ids.
//   - RequestLogger runs inside ContextEnhancer so it logs with that logger.
//   - Recover is innermost so a panic still passes through the logger.
func NewRouter(s *server.Server, h *handler.Handlers, r *Router) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		echoMiddleware.BodyLimit("1M"),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.RateLimit.Limiter(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	// Every method is forwarded; the Router answers the ones it has no
	// route for with 405.
	router.Any(ResourceCollection, r.Echo)
	router.Any(ResourceCollection+"/:"+model.PathParamID, r.Echo)
	router.RouteNotFound("/*", r.Echo)

	return router
}

// Echo adapts an Echo request into an envelope, dispatches it and writes
// the envelope response back.
func (r *Router) Echo(c echo.Context) error {
	req, err := envelopeFromEcho(c)
	if err != nil {
		return err
	}

	resp := r.Dispatch(c.Request().Context(), req)

	for k, v := range resp.Headers {
		c.Response().Header().Set(k, v)
	}
	for k, values := range resp.MultiValueHeaders {
		for _, v := range values {
			c.Response().Header().Add(k, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)
	if _, err := io.WriteString(c.Response(), resp.Body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}

	return nil
}

func envelopeFromEcho(c echo.Context) (events.APIGatewayProxyRequest, error) {
	httpReq := c.Request()

	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("failed to read request body: %w", err)
	}

	// Matched routes carry an Echo template ("/sobreviventes/:id"); the
	// catch-all has none, so the Router resolves the resource from the path.
	var resource string
	pathParams := map[string]string{}
	if route := c.Path(); route != "/*" {
		resource = echoPathToResource(route)
		for _, name := range c.ParamNames() {
			pathParams[name] = c.Param(name)
		}
	}

	headers := make(map[string]string, len(httpReq.Header))
	for k := range httpReq.Header {
		headers[k] = httpReq.Header.Get(k)
	}

	query := make(map[string]string)
	for k := range httpReq.URL.Query() {
		query[k] = httpReq.URL.Query().Get(k)
	}

	return events.APIGatewayProxyRequest{
		Resource:                        resource,
		Path:                            httpReq.URL.Path,
		HTTPMethod:                      httpReq.Method,
		Headers:                         headers,
		MultiValueHeaders:               httpReq.Header,
		QueryStringParameters:           query,
		MultiValueQueryStringParameters: httpReq.URL.Query(),
		PathParameters:                  pathParams,
		Body:                            string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  middleware.GetRequestID(c),
			HTTPMethod: httpReq.Method,
			Path:       httpReq.URL.Path,
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  c.RealIP(),
				UserAgent: httpReq.UserAgent(),
			},
		},
	}, nil
}

// echoPathToResource rewrites ":name" segments into "{name}".
func echoPathToResource(route string) string {
	segments := strings.Split(route, "/")
	for i, segment := range segments {
		if name, ok := strings.CutPrefix(segment, ":"); ok {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}
