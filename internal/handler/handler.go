// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It decodes request envelopes, handles input validation using the
// validation package, and calls the appropriate service layer.
// It acts as the interface between the request envelope (an API
// Gateway proxy event, whether it came from Lambda or from the HTTP
// adapter) and the core business logic.
package handler
