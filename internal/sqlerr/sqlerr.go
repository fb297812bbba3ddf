// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the PostgreSQL driver and
// converts them into readable store errors (e.g. a check
// constraint violation on pclass becomes "The Pclass value does
// not meet required conditions").
package sqlerr

import "fmt"

// Code is the category of a database error, derived from its SQLSTATE.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	InvalidText         Code = "invalid_text_representation"
	NumericOutOfRange   Code = "numeric_value_out_of_range"
	UndefinedTable      Code = "undefined_table"
	ConnectionFailure   Code = "connection_failure"
	QueryCanceled       Code = "query_canceled"
)

// MapCode maps a PostgreSQL SQLSTATE onto a Code.
// Unknown states become Other.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidText
	case "22003":
		return NumericOutOfRange
	case "42P01":
		return UndefinedTable
	case "57014":
		return QueryCanceled
	case "08000", "08003", "08006", "08001", "08004":
		return ConnectionFailure
	default:
		return Other
	}
}

// Severity is the PostgreSQL message severity.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityUnknown Severity = "UNKNOWN"
)

// MapSeverity converts the driver's severity string into a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic:
		return Severity(severity)
	default:
		return SeverityUnknown
	}
}

// Error is a normalized PostgreSQL error.
//
// Message is the readable text built by HandleError; DatabaseMessage keeps
// what the server actually said for the logs.
type Error struct {
	Code            Code
	Severity        Severity
	DatabaseCode    string
	Message         string
	DatabaseMessage string
	TableName       string
	ColumnName      string
	ConstraintName  string

	driverErr error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("database error %s: %s", e.DatabaseCode, e.DatabaseMessage)
}

// Unwrap returns the original driver error.
func (e *Error) Unwrap() error {
	return e.driverErr
}
