package domain

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    ErrorCode         `json:"code"`
	Errors  map[string]string `json:"errors,omitempty"`
}
