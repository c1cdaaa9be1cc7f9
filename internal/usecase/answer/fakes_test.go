package answer

import (
	"context"
	"testing"

	"github.com/futig/notes-answer/internal/config"
	"github.com/futig/notes-answer/internal/entity"
)

type fakeEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

type fakeStore struct {
	calls     int
	lastK     int
	lastScope entity.AuthScope
	matches   []entity.Match
	err       error
}

func (f *fakeStore) Search(_ context.Context, _ []float32, k int, scope entity.AuthScope) ([]entity.Match, error) {
	f.calls++
	f.lastK = k
	f.lastScope = scope
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

type fakeChat struct {
	calls    int
	messages []entity.ChatMessage
	reply    string
	err      error
}

func (f *fakeChat) Complete(_ context.Context, messages []entity.ChatMessage) (string, error) {
	f.calls++
	f.messages = messages
	return f.reply, f.err
}

func testPrompts(t *testing.T) config.Prompts {
	t.Helper()
	p, err := config.LoadPrompts("", "pt")
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}
	return p
}

func testConfig(t *testing.T, policy entity.CitationPolicy) *config.Config {
	t.Helper()
	return &config.Config{
		CitationPolicy: policy,
		Prompts:        testPrompts(t),
		AnswerCfg:      config.AnswerConfig{DefaultTopK: 5, MaxTopK: 20, Language: "pt"},
		ContextCfg:     config.ContextConfig{TitleLength: 52, PreviewLength: 180, FragmentLength: 1200},
	}
}
