// Package errs defines the error shapes returned to API clients.
//
// Every failure in the request path ends up as an *HTTPError: validation
// problems (400), unknown passengers (404), unmatched routes (405) and store
// or predictor failures (500). Handlers and transports only ever serialize
// this one type, so clients always receive the same JSON structure.
package errs
