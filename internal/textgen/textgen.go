package textgen

import (
	"context"
	"strings"
)

// Role identifies the speaker of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// Request is a provider-neutral completion request.
type Request struct {
	SystemPrompt string
	Messages     []Message
	// Model overrides the provider's configured model when non-empty.
	Model       string
	MaxTokens   int
	Temperature float64
}

// Response is the result of a completion attempt. Providers report soft
// failures through Success=false and Error rather than a Go error.
type Response struct {
	Success  bool
	Text     string
	Error    string
	Model    string
	Provider string
}

// Usable reports whether the response carries text the caller can parse.
func (r Response) Usable() bool {
	return r.Success && strings.TrimSpace(r.Text) != ""
}

// Provider is a black-box text completion backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc struct {
	ProviderName string
	Fn           func(ctx context.Context, req Request) (Response, error)
}

func (p ProviderFunc) Name() string { return p.ProviderName }

func (p ProviderFunc) Complete(ctx context.Context, req Request) (Response, error) {
	return p.Fn(ctx, req)
}
