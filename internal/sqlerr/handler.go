package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the mapped sqlerr.Code for a given error.
//
// If err can be unwrapped into *sqlerr.Error its Code is returned,
// otherwise Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into our custom sqlerr.Error.
//
// pgconn.PgError contains Postgres-specific fields like:
//   - Code (SQLSTATE)
//   - Severity
//   - TableName/ColumnName/ConstraintName etc.
//
// We map SQLSTATE + Severity into our enums for easier switching.
func ConvertPgError(src *pgconn.PgError) *Error {
	converted := &Error{
		Code:            MapCode(src.Code),
		Severity:        MapSeverity(src.Severity),
		DatabaseCode:    src.Code,
		DatabaseMessage: src.Message,
		TableName:       src.TableName,
		ColumnName:      src.ColumnName,
		ConstraintName:  src.ConstraintName,
		driverErr:       src,
	}
	converted.Message = formatUserFriendlyMessage(converted)
	return converted
}

// formatUserFriendlyMessage produces the text that ends up in the 500 body.
//
// It uses table/column info to phrase messages in a more human way.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName)

	switch sqlErr.Code {
	case NotNullViolation:
		// Example: "The Pclass is required"
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		// CHECK constraints fail when values violate certain conditions.
		// Example: "The Pclass value does not meet required conditions"
		fieldName := humanizeText(columnFromConstraint(sqlErr.ConstraintName, sqlErr.ColumnName))
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case UniqueViolation:
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case InvalidText, NumericOutOfRange:
		return fmt.Sprintf("A %s value could not be stored: %s", entityName, sqlErr.DatabaseMessage)

	case UndefinedTable:
		return "The prediction table does not exist, run the migrations first"

	case QueryCanceled:
		return "The database query was canceled"

	case ConnectionFailure:
		return "The database connection failed"

	default:
		return fmt.Sprintf("database error %s: %s", sqlErr.DatabaseCode, sqlErr.DatabaseMessage)
	}
}

// getEntityName tries to infer an entity name from the table name.
//
// The table name is singularized if it ends with "s", otherwise
// the fallback is "record".
func getEntityName(tableName string) string {
	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return strings.ToLower(humanizeText(entity))
	}

	return "record"
}

// columnFromConstraint extracts the column from a "<table>_<column>_check"
// constraint name, which is the name PostgreSQL generates for inline checks.
func columnFromConstraint(constraintName, columnName string) string {
	if columnName != "" {
		return columnName
	}
	name := strings.TrimSuffix(constraintName, "_check")
	if name == constraintName {
		return ""
	}
	name = strings.TrimPrefix(name, "survival_predictions_")
	return name
}

// humanizeText converts snake_case (or lower-ish identifiers) into Title Case.
//
// Example:
//
//	"embarked_q" -> "Embarked Q"
//
// It uses x/text/cases for proper title casing rules.
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a low-level database error into a readable store error.
//
// Output:
//   - pgconn.PgError: a *sqlerr.Error carrying a user-friendly message
//   - anything else (timeouts, closed pool): returned unchanged so callers
//     can still match it with errors.Is
//
// Callers handle pgx.ErrNoRows themselves before calling this, since a
// missing row is not a failure for the store.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return ConvertPgError(pgerr)
	}

	return err
}
