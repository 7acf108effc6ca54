package models

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ToolCallStatus tracks the execution state of an assistant tool call.
// The backend reports completed calls; pending/executing are client-side
// states used while a send is in flight.
type ToolCallStatus string

const (
	ToolCallPending   ToolCallStatus = "pending"
	ToolCallExecuting ToolCallStatus = "executing"
	ToolCallCompleted ToolCallStatus = "completed"
	ToolCallFailed    ToolCallStatus = "failed"
)

// ToolCall is a structured action the assistant reports taking alongside
// its natural-language reply.
type ToolCall struct {
	ToolName  string         `json:"tool_name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Status    ToolCallStatus `json:"status,omitempty"`
}

// Message is one entry in a conversation transcript. IDs are generated
// client-side; the transcript is append-only from the user's perspective.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	ToolCalls []ToolCall  `json:"tool_calls,omitempty"`
}

// ChatRequest is the request body for POST /{userId}/chat. A zero
// ConversationID means "start a new conversation".
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID int64  `json:"conversation_id,omitempty"`
}

// ChatResponse is the backend's reply to a chat request.
type ChatResponse struct {
	ConversationID int64      `json:"conversation_id"`
	Response       string     `json:"response"`
	ToolCalls      []ToolCall `json:"tool_calls"`
}
