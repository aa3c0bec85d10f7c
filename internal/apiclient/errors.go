package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrTransport    = errors.New("transport failure")
	ErrRequest      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("rejected by backend")
)

const (
	MsgUnauthorized   = "Unauthorized, please log in again."
	MsgTicketNotFound = "Ticket not found."
	MsgGeneric        = "Unable to complete request."
)

// Error carries the backend's failure for one operation. Status is zero when
// the request never got a response; it matches ErrRequest instead of
// ErrTransport when the request could not be built at all.
type Error struct {
	Op      Op
	Status  int
	Code    string
	Message string
	Body    string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Status == 0 && !errors.Is(e.Err, ErrRequest)
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusConflict || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// UserMessage picks the text a view shows for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthorized) {
		return MsgUnauthorized
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return MsgGeneric
	}
	if apiErr.Op == OpQueueEntry && errors.Is(err, ErrNotFound) {
		return MsgTicketNotFound
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgGeneric
}

// errorFromResponse extracts a human-readable message from the shapes the
// backend uses: {"message"}, {"error":{"code","message"}}, {"error":"..."},
// or a bare text body.
func errorFromResponse(op Op, status int, contentType string, body []byte) *Error {
	apiErr := &Error{Op: op, Status: status, Body: string(body)}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return apiErr
	}

	if strings.Contains(contentType, "json") || strings.HasPrefix(trimmed, "{") {
		var payload struct {
			Message string          `json:"message"`
			Code    string          `json:"code"`
			Error   json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			apiErr.Message = payload.Message
			apiErr.Code = payload.Code
			if len(payload.Error) > 0 {
				var nested struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				}
				var plain string
				if json.Unmarshal(payload.Error, &nested) == nil {
					if apiErr.Message == "" {
						apiErr.Message = nested.Message
					}
					if apiErr.Code == "" {
						apiErr.Code = nested.Code
					}
				} else if json.Unmarshal(payload.Error, &plain) == nil && apiErr.Code == "" {
					apiErr.Code = plain
				}
			}
			return apiErr
		}
	}

	if strings.HasPrefix(contentType, "text/plain") {
		apiErr.Message = trimmed
	}
	return apiErr
}
