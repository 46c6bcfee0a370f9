package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a conversation. Order is chronological.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. The caller resends the
// whole history on every turn.
type ChatRequest struct {
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

// DefaultTemperature is used when the request omits temperature.
const DefaultTemperature = 1.0

// SamplingTemperature returns the requested temperature or the default.
func (r ChatRequest) SamplingTemperature() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

// LastMessage returns the most recent message, if any.
func (r ChatRequest) LastMessage() (Message, bool) {
	if len(r.Messages) == 0 {
		return Message{}, false
	}
	return r.Messages[len(r.Messages)-1], true
}

// ChatResponse is the reply of one chat turn.
type ChatResponse struct {
	Response string `json:"response"`
	Point    int    `json:"point"`    // anger level 1..5
	Progress int    `json:"progress"` // resolution progress, range depends on the configured scale
	Audio    string `json:"audio"`    // base64 LINEAR16, empty when synthesis failed
}
