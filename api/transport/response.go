package transport

import (
	"encoding/json"

	"github.com/fastygo/todos/domain"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every API response, success or failure.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ListMeta accompanies a todo listing.
type ListMeta struct {
	Stats  interface{} `json:"stats"`
	Status string      `json:"status"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: StatusSuccess,
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, message string, meta interface{}) Envelope {
	return Envelope{
		Status: StatusError,
		Code:   code,
		Error:  message,
		Meta:   meta,
	}
}

// FromError returns an error envelope carrying the classification of err.
func FromError(err error) Envelope {
	return NewError(string(domain.CodeOf(err)), err.Error(), nil)
}

// String returns the JSON form for logs.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
