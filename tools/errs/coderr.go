package errs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// CodeError is the error shape returned to API clients.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

var (
	ErrArgs             = NewCodeError(1001, "invalid argument")
	ErrTokenInvalid     = NewCodeError(1501, "token invalid")
	ErrTokenExpired     = NewCodeError(1502, "token expired")
	ErrUnauthorized     = NewCodeError(1503, "unauthorized")
	ErrDuplicateEmail   = NewCodeError(2001, "email already exists")
	ErrDuplicateName    = NewCodeError(2002, "username already taken")
	ErrBadCredentials   = NewCodeError(2003, "invalid credentials")
	ErrUserNotFound     = NewCodeError(2004, "user not found")
	ErrEmptyMessage     = NewCodeError(3001, "message content is required")
	ErrInternal         = NewCodeError(5000, "internal server error")
	ErrStorageNotReady  = NewCodeError(5001, "storage not ready")
	ErrPresenceDisabled = NewCodeError(5002, "presence mirror disabled")
)

// APIStatus maps an error onto the HTTP status and body the API returns.
// Unknown errors collapse into a generic 500 so internals never leak.
func APIStatus(err error) (int, *CodeError) {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError, ErrInternal
	}
	switch ce.Code {
	case ErrUnauthorized.Code, ErrTokenInvalid.Code, ErrTokenExpired.Code, ErrBadCredentials.Code:
		return http.StatusUnauthorized, ce
	case ErrUserNotFound.Code:
		return http.StatusNotFound, ce
	case ErrInternal.Code, ErrStorageNotReady.Code:
		return http.StatusInternalServerError, ce
	default:
		return http.StatusBadRequest, ce
	}
}
