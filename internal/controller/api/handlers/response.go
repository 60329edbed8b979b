package handlers

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// APIError is the flat error body shared by every endpoint:
// {"success": false, "error": "..."}. Probe failures additionally name
// the detected source platform. It implements huma.StatusError so huma
// writes the struct itself instead of its default problem document.
type APIError struct {
	status   int
	Success  bool   `json:"success"`
	Err      string `json:"error"`
	Platform string `json:"platform_detected,omitempty"`
}

func (e *APIError) Error() string  { return e.Err }
func (e *APIError) GetStatus() int { return e.status }

// InitErrors swaps huma's error factory for one producing APIError, so
// framework-generated errors (validation, unknown routes) come out in
// the same shape as handler errors.
func InitErrors() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		detail := msg
		if len(errs) > 0 {
			extra := make([]string, len(errs))
			for i, e := range errs {
				extra[i] = e.Error()
			}
			detail += ": " + strings.Join(extra, "; ")
		}
		return &APIError{status: status, Success: false, Err: detail}
	}
}

// MsgOutput acknowledges an action with {"success": true, "message"}.
type MsgOutput struct {
	Body MsgBody
}

type MsgBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Msg(message string) *MsgOutput {
	return &MsgOutput{Body: MsgBody{Success: true, Message: message}}
}
