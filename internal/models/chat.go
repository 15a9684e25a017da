package models

// Chat roles accepted from clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. Error marks an assistant turn
// that the client rendered as a failure; such turns are not sent upstream.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Error   bool   `json:"error,omitempty"`
}

// ChatRequest asks about a single note, or the whole vault when NoteSlug is
// empty or unknown. Message is shorthand for a one-turn conversation.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages,omitempty"`
	Message  string        `json:"message,omitempty"`
	NoteSlug string        `json:"noteSlug,omitempty"`
}

// ChatResponse is the assistant's reply and the slugs used as context.
type ChatResponse struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources"`
}

// VaultQuestion is a one-shot question across all notes.
type VaultQuestion struct {
	Question string `json:"question"`
}

// VaultAnswer is the answer to a VaultQuestion.
type VaultAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
