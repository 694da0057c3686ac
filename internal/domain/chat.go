package domain

// ChatRequest is the payload a chat client submits to the relay.
type ChatRequest struct {
	Message string `json:"message"`
}
