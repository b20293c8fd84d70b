package assistant

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completer is a text-completion endpoint. Implementations must honor ctx
// deadlines; callers treat any error as "endpoint unavailable".
type Completer interface {
	Name() string
	Complete(ctx context.Context, messages []Message, temperature float32) (string, error)
}

func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

func User(content string) Message { return Message{Role: RoleUser, Content: content} }
