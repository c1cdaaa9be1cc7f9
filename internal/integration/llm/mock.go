package llm

import (
	"context"
	"strings"

	"github.com/futig/notes-answer/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockAnswerRunes = 240

// MockConnector answers with the beginning of the first context fragment it
// finds in the last user message.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Complete(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("messages", len(messages)))

	var prompt string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == entity.RoleUser {
			prompt = messages[i].Content
			break
		}
	}

	fragment := firstFragment(prompt)
	if fragment == "" {
		return "", nil
	}

	runes := []rune(fragment)
	if len(runes) > mockAnswerRunes {
		fragment = string(runes[:mockAnswerRunes]) + "…"
	}
	return "De acordo com as suas notas: " + fragment, nil
}

// firstFragment returns the text following the first source label line.
func firstFragment(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") && strings.Contains(trimmed, " 1") && i+1 < len(lines) {
			return strings.TrimSpace(lines[i+1])
		}
	}
	return ""
}
