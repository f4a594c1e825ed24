package types

import "encoding/json"

// AIDecision is one trading decision produced by the AI service.
type AIDecision struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Decision   string          `json:"decision"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning"`
	Executed   bool            `json:"executed"`
	CreatedAt  string          `json:"created_at"`
	MarketData json.RawMessage `json:"market_data,omitempty"`
}

// AISessionStatus is the autonomous AI session status. Its shape belongs to the AI service.
type AISessionStatus map[string]any

// AIAnalysis is the latest autonomous analysis. Its shape belongs to the AI service.
type AIAnalysis map[string]any

// ChatMessage is one turn of the AI assistant conversation.
type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatHistory is the envelope returned by the chat history endpoint.
type ChatHistory struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatRequest is the body of a chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReply is the assistant's answer to a chat message.
type ChatReply struct {
	Response string `json:"response"`
}
