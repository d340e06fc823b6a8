package gapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/valyala/fastjson"
)

var (
	// ErrNotConnected is returned when a List built without a backing query is asked for its next page.
	ErrNotConnected = errors.New("gapi: must have active connection")

	// ErrNoMorePages is returned by List.Next when the list carries no continuation token.
	ErrNoMorePages = errors.New("gapi: no more pages")
)

var errorParsers fastjson.ParserPool

// APIError is returned for every non-2xx response of the service.
type APIError struct {
	Code    int
	Status  string
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gapi: %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gapi: %d: %s", e.Code, e.Message)
}

// newAPIError reads the Google error envelope {"error":{"code","message","status"}}.
// Bodies that are not JSON keep the HTTP status text as message.
func newAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{
		Code:    code,
		Message: http.StatusText(code),
		Body:    body,
	}

	p := errorParsers.Get()
	defer errorParsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return apiErr
	}

	if msg := v.GetStringBytes("error", "message"); len(msg) > 0 {
		apiErr.Message = string(msg)
	}
	if status := v.GetStringBytes("error", "status"); len(status) > 0 {
		apiErr.Status = string(status)
	}

	return apiErr
}

// IsNotFound reports whether err is an APIError with a 404 code.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsAlreadyExists reports whether err is an APIError with a 409 code.
func IsAlreadyExists(err error) bool {
	return hasCode(err, http.StatusConflict)
}

func hasCode(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
