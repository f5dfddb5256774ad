package sqlerr

import (
	"context"
	"errors"

	"github.com/deppfellow/tokenfarms-api/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCode reports the Code for err.
//
// PostgreSQL errors are classified by SQLSTATE; expired or cancelled contexts
// (query timeout, client gone, pool acquire wait) get their own codes.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Canceled
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ConnectionFailure
	}

	return Other
}

// ConvertPgError converts a raw PostgreSQL error into an Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// LogFields returns structured fields describing err for the error log line.
func LogFields(err error) map[string]any {
	fields := map[string]any{
		"db_error_code": string(ErrCode(err)),
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		fields["sql_state"] = sqlErr.DatabaseCode
		fields["sql_severity"] = string(sqlErr.Severity)
		if sqlErr.TableName != "" {
			fields["sql_table"] = sqlErr.TableName
		}
		if sqlErr.ColumnName != "" {
			fields["sql_column"] = sqlErr.ColumnName
		}
		if sqlErr.ConstraintName != "" {
			fields["sql_constraint"] = sqlErr.ConstraintName
		}
	}

	return fields
}

// HandleError converts a low-level error into the error the client gets.
//
// *errs.HTTPError values pass through unchanged. Anything else came from the
// store or the runtime and becomes a generic 500 without detail.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	return errs.NewInternalServerError()
}
