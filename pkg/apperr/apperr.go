package apperr

import "errors"

// Kind identifies the layer an error originates from. Handlers are the only
// place allowed to translate between kinds; the transaction middleware rolls
// back on every error without inspecting it.
type Kind string

const (
	KindDomain         Kind = "domain"
	KindCommand        Kind = "command"
	KindQuery          Kind = "query"
	KindInfrastructure Kind = "infrastructure"
)

// Code is the coarse classification mapped to an HTTP status by the
// presentation layer.
type Code string

const (
	CodeBadRequest Code = "BAD_REQUEST"
	CodeNotFound   Code = "NOT_FOUND"
	CodeInternal   Code = "INTERNAL_SERVER_ERROR"
)

// DetailCode is a stable machine-readable sub-classification of a validation
// failure. Infrastructure and internal errors carry none.
type DetailCode string

const (
	DetailEmailAlreadyExist           DetailCode = "EMAIL_ALREADY_EXIST"
	DetailEmailCanNotBeEmpty          DetailCode = "EMAIL_CAN_NOT_BE_EMPTY"
	DetailPasswordCanNotBeEmpty       DetailCode = "PASSWORD_CAN_NOT_BE_EMPTY"
	DetailInvalidUserEmail            DetailCode = "INVALID_USER_EMAIL"
	DetailInvalidUserPassword         DetailCode = "INVALID_USER_PASSWORD"
	DetailUserNotFound                DetailCode = "USER_NOT_FOUND"
	DetailPasswordIsWrong             DetailCode = "PASSWORD_IS_WRONG"
	DetailUpdateUserIDCanNotBeEmpty   DetailCode = "UPDATE_USER_ID_CAN_NOT_BE_EMPTY"
	DetailUserIDCanNotBeEmpty         DetailCode = "USER_ID_CAN_NOT_BE_EMPTY"
	DetailCanNotUpdateUserWithoutData DetailCode = "CAN_NOT_UPDATE_USER_WITHOUT_DATA"
	DetailUnauthorized                DetailCode = "UNAUTHORIZED"
	DetailCanNotUpdatePwdWithoutSalt  DetailCode = "CAN_NOT_UPDATE_PASSWORD_WITHOUT_SALT"
	DetailEmailExisted                DetailCode = "EMAIL_EXISTED"
	DetailUserAggregateAlreadyHasID   DetailCode = "USER_AGGREGATE_ALREADY_HAS_ID"
)

// Error is the structured failure crossing layer boundaries.
type Error struct {
	Kind    Kind
	Code    Code
	Detail  DetailCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Domain builds a domain-rule violation (aggregate invariants).
func Domain(code Code, detail DetailCode, msg string) *Error {
	return &Error{Kind: KindDomain, Code: code, Detail: detail, Message: msg}
}

// Command builds a command-side business-rule failure.
func Command(code Code, detail DetailCode, msg string) *Error {
	return &Error{Kind: KindCommand, Code: code, Detail: detail, Message: msg}
}

// Query builds a query-side business-rule failure.
func Query(code Code, detail DetailCode, msg string) *Error {
	return &Error{Kind: KindQuery, Code: code, Detail: detail, Message: msg}
}

// Infrastructure wraps a raw storage/transport failure. The cause is kept for
// logs but never exposed in the error message shown to clients.
func Infrastructure(msg string, cause error) *Error {
	return &Error{Kind: KindInfrastructure, Code: CodeInternal, Message: msg, cause: cause}
}

// Internal is the opaque failure substituted for anything unrecognized.
func Internal() *Error {
	return &Error{Kind: KindCommand, Code: CodeInternal, Message: "Internal Server Error"}
}

// From extracts a structured error from err's chain.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Recognized reports whether err is one of the known structured kinds and may
// cross a handler boundary unchanged.
func Recognized(err error) bool {
	_, ok := From(err)
	return ok
}
