// Package server provides the HTTP gateway of the sound server.
package server

// PlayRequest is the request body for POST /play.
type PlayRequest struct {
	Sound string `json:"sound" binding:"required"`
}

// Outcome is the body of every play response and of every error response.
// Exactly one of Message and Error is set.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Succeeded creates a successful outcome.
func Succeeded(message string) Outcome {
	return Outcome{Success: true, Message: message}
}

// Failed creates a failed outcome.
func Failed(err string) Outcome {
	return Outcome{Success: false, Error: err}
}

// HealthResponse is the response for the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend,omitempty"`
	InFlight int64  `json:"in_flight"`
}
