// Package sqlerr classifies database driver errors.
//
// It turns raw pgconn errors (SQLSTATE codes) and driver-level failures
// (acquire timeouts, cancelled contexts) into a small set of categories so
// they can be logged consistently. Clients never see any of it: every store
// failure reaches them as an opaque 500.
package sqlerr

import "fmt"

// Code is the category of a database failure.
type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	UniqueViolation           Code = "unique_violation"
	CheckViolation            Code = "check_violation"
	InvalidTextRepresentation Code = "invalid_text_representation"
	NumericValueOutOfRange    Code = "numeric_value_out_of_range"
	SyntaxError               Code = "syntax_error"
	UndefinedTable            Code = "undefined_table"
	UndefinedColumn           Code = "undefined_column"
	InsufficientPrivilege     Code = "insufficient_privilege"
	QueryCanceled             Code = "query_canceled"
	TooManyConnections        Code = "too_many_connections"
	ConnectionFailure         Code = "connection_failure"
	Timeout                   Code = "timeout"
	Canceled                  Code = "canceled"
)

// Severity mirrors the PostgreSQL message severity.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a normalized database error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"22P02": InvalidTextRepresentation,
	"22003": NumericValueOutOfRange,
	"42601": SyntaxError,
	"42P01": UndefinedTable,
	"42703": UndefinedColumn,
	"42501": InsufficientPrivilege,
	"57014": QueryCanceled,
	"53300": TooManyConnections,
}

// MapCode maps a SQLSTATE onto a Code. Class 08 is connection trouble.
func MapCode(sqlState string) Code {
	if code, ok := pgCodes[sqlState]; ok {
		return code
	}
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionFailure
	}
	return Other
}

// MapSeverity maps the server-reported severity string onto a Severity.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}
