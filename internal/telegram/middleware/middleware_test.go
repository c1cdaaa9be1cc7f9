package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(userID, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
		},
	}
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	sender := &fakeSender{}
	rl := NewRateLimiterMiddleware(6, 2, sender, "devagar")
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	calls := 0
	next := func(context.Context, tgbotapi.Update) { calls++ }
	ctx := context.Background()
	update := textUpdate(7, 42, "oi")

	for i := 0; i < 3; i++ {
		rl.Handle(ctx, update, next)
	}
	if calls != 2 {
		t.Fatalf("calls after burst = %d, want 2", calls)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "devagar" {
		t.Fatalf("warnings = %v", sender.sent)
	}

	// Further rejections inside the warning interval stay silent
	rl.Handle(ctx, update, next)
	if len(sender.sent) != 1 {
		t.Errorf("warned again within interval: %v", sender.sent)
	}

	// 6 per minute refills a token every 10 seconds
	now = now.Add(11 * time.Second)
	rl.Handle(ctx, update, next)
	if calls != 3 {
		t.Errorf("calls after refill = %d, want 3", calls)
	}
}

func TestRateLimiter_PerUser(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, &fakeSender{}, "devagar")

	calls := 0
	next := func(context.Context, tgbotapi.Update) { calls++ }
	ctx := context.Background()

	rl.Handle(ctx, textUpdate(1, 10, "a"), next)
	rl.Handle(ctx, textUpdate(1, 10, "b"), next)
	rl.Handle(ctx, textUpdate(2, 20, "c"), next)

	if calls != 2 {
		t.Errorf("calls = %d, want one per user", calls)
	}
}

func TestAllowlist(t *testing.T) {
	mw := NewAllowlistMiddleware([]int64{42})

	calls := 0
	next := func(context.Context, tgbotapi.Update) { calls++ }

	mw.Handle(context.Background(), textUpdate(1, 42, "ok"), next)
	mw.Handle(context.Background(), textUpdate(1, 99, "intruso"), next)
	mw.Handle(context.Background(), tgbotapi.Update{UpdateID: 5}, next)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRecovery_NotifiesChat(t *testing.T) {
	sender := &fakeSender{}
	mw := NewRecoveryMiddleware(sender, "erro")

	mw.Handle(context.Background(), textUpdate(1, 42, "oi"), func(context.Context, tgbotapi.Update) {
		panic("boom")
	})

	if len(sender.sent) != 1 || sender.sent[0] != "erro" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestLogging_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mw := NewLoggingMiddleware(zap.New(core))

	mw.Handle(context.Background(), textUpdate(7, 42, "oi"), func(ctx context.Context, _ tgbotapi.Update) {
		ctxzap.Info(ctx, "inside")
	})

	inside := logs.FilterMessage("inside").All()
	if len(inside) != 1 {
		t.Fatalf("inside entries = %d", len(inside))
	}
	fields := inside[0].ContextMap()
	if id, _ := fields["request_id"].(string); id == "" {
		t.Error("request_id missing from handler logger")
	}
	if fields["chat_id"] != int64(42) || fields["user_id"] != int64(7) {
		t.Errorf("fields = %v", fields)
	}
	if logs.FilterMessage("telegram update processed").Len() != 1 {
		t.Error("completion not logged")
	}
}
