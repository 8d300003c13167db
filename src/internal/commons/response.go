package commons

// Response is the envelope every HTTP endpoint returns. Code carries the
// ledger error code on failures so clients can branch without parsing Message.
type Response[T any] struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Code      string   `json:"code,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
	Data      *T       `json:"data,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

func CodedErrorResponse[T any](code, message string, errors ...string) Response[T] {
	response := ErrorResponse[T](message, errors...)
	response.Code = code
	return response
}

// WithRequestID stamps the request correlation id onto the envelope.
func (r Response[T]) WithRequestID(id string) Response[T] {
	r.RequestID = id
	return r
}
