package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"lumen/internal/services"
	"lumen/internal/textgen"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestCompleteMapsRequest(t *testing.T) {
	fake := &fakeGenerator{resp: textResponse("PATTERN: rest")}
	client := newWithGenerator(Config{APIKey: "k", MaxTokens: 400, Temperature: 0.3}, fake)

	resp, err := client.Complete(context.Background(), textgen.Request{
		SystemPrompt: "be calm",
		Messages: []textgen.Message{
			{Role: textgen.RoleUser, Content: "first"},
			{Role: textgen.RoleAssistant, Content: "reply"},
			{Role: textgen.RoleUser, Content: "second"},
		},
		Model: "anthropic/claude-sonnet-4",
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !resp.Success || resp.Text != "PATTERN: rest" || resp.Provider != "gemini" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if fake.model != defaultModel {
		t.Fatalf("non-gemini model override should be ignored, got %q", fake.model)
	}
	if len(fake.contents) != 3 || fake.contents[1].Role != string(genai.RoleModel) {
		t.Fatalf("unexpected contents %+v", fake.contents)
	}
	if fake.config.SystemInstruction == nil || fake.config.MaxOutputTokens != 400 {
		t.Fatalf("unexpected config %+v", fake.config)
	}
	if fake.config.Temperature == nil || *fake.config.Temperature != float32(0.3) {
		t.Fatalf("unexpected temperature %v", fake.config.Temperature)
	}
}

func TestCompleteSoftFailures(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{name: "empty text", resp: textResponse("   ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newWithGenerator(Config{APIKey: "k"}, &fakeGenerator{resp: tt.resp})
			resp, err := client.Complete(context.Background(), textgen.Request{Messages: []textgen.Message{{Content: "hi"}}})
			if err != nil {
				t.Fatalf("expected soft failure, got %v", err)
			}
			if resp.Success || resp.Error == "" {
				t.Fatalf("expected Success=false, got %+v", resp)
			}
		})
	}
}

func TestCompleteErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	client := newWithGenerator(Config{APIKey: "k"}, &fakeGenerator{err: boom})
	if _, err := client.Complete(context.Background(), textgen.Request{Messages: []textgen.Message{{Content: "hi"}}}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped SDK error, got %v", err)
	}
	if _, err := client.Complete(context.Background(), textgen.Request{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := NewClient(context.Background(), Config{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
