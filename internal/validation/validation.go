// Package validation contains the logic for validating
// request data.
//
// Request bodies arrive as loosely typed JSON: numbers may be sent as
// strings, integers as floats. This package coerces each field into its
// declared Go type, then uses the `validator` library to enforce the rules
// defined in struct tags, and extracts every problem into a format the
// client can understand.
package validation
