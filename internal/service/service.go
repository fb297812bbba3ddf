// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations (prediction, lookups, deletion), and calls
// repository methods to interact with the record store. Every
// failure leaves this package as an *errs.HTTPError.
package service
