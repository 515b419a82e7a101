package response

// Envelope is the wire format shared by every endpoint: a success flag
// plus either data or an error message.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// Msg returns a success envelope carrying only a human-readable message.
func Msg(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Fail wraps an error message in a failure envelope.
func Fail(err string) Envelope {
	return Envelope{Success: false, Error: err}
}
