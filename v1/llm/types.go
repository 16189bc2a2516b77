package llm

// Roles of a conversation turn.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSystemPrompt frames the retrieved context for the model.
const DefaultSystemPrompt = `You are a helpful assistant. Use the following information to answer the user's question:

Context:
%s

Answer based on the provided context. If the context does not contain the answer, say so honestly.`

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one generation call.
type Request struct {
	// History holds prior turns, oldest first. Only the last Config.HistoryWindow are sent.
	History []Message
	// Message is the new user message.
	Message string
	// Context is retrieved text. When non-empty it is sent as a leading system message.
	Context string
	// MaxTokens overrides Config.MaxTokens when positive.
	MaxTokens int
	// Temperature overrides Config.Temperature when set.
	Temperature *float64
}

// Response is the generated answer.
type Response struct {
	Content    string
	Model      string
	StopReason string
}
