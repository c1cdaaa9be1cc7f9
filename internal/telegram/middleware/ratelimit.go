package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// Buckets of users idle this long are evicted
	bucketTTL       = time.Hour
	cleanupInterval = 10 * time.Minute
	warningInterval = 30 * time.Second
)

// bucket tracks rate limit state for a single user
type bucket struct {
	mu            sync.Mutex
	tokens        float64
	lastRefill    time.Time
	lastWarningAt time.Time
}

// RateLimiterMiddleware implements token bucket rate limiting per user
type RateLimiterMiddleware struct {
	buckets     *cache.Cache
	capacity    float64 // burst size
	refillRate  float64 // tokens added per second
	bot         Sender
	warningText string
	now         func() time.Time
}

// NewRateLimiterMiddleware creates a new rate limiter middleware. Each user
// may send burstSize updates at once and requestsPerMinute on average.
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	bot Sender,
	warningText string,
) *RateLimiterMiddleware {
	if burstSize < 1 {
		burstSize = 1
	}
	return &RateLimiterMiddleware{
		buckets:     cache.New(bucketTTL, cleanupInterval),
		capacity:    float64(burstSize),
		refillRate:  float64(requestsPerMinute) / 60.0,
		bot:         bot,
		warningText: warningText,
		now:         time.Now,
	}
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(ctx context.Context, update tgbotapi.Update, next Next) {
	userID, chatID := origin(update)
	if userID == 0 {
		// Unknown update type, allow it
		next(ctx, update)
		return
	}

	allowed, warn := rl.allow(userID)
	if !allowed {
		ctxzap.Warn(ctx, "rate limit exceeded")
		if warn && chatID != 0 {
			rl.sendWarning(ctx, chatID)
		}
		return
	}

	next(ctx, update)
}

// allow takes a token from the user's bucket. warn reports whether the user
// should be told about the limit, at most once per warningInterval.
func (rl *RateLimiterMiddleware) allow(userID int64) (allowed, warn bool) {
	key := strconv.FormatInt(userID, 10)
	now := rl.now()

	// Add fails when the key exists, so concurrent first requests share one bucket
	_ = rl.buckets.Add(key, &bucket{tokens: rl.capacity, lastRefill: now}, cache.DefaultExpiration)
	v, ok := rl.buckets.Get(key)
	if !ok {
		return true, false
	}
	b := v.(*bucket)
	// Refresh expiration so active users keep their bucket
	rl.buckets.SetDefault(key, b)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * rl.refillRate
	if b.tokens > rl.capacity {
		b.tokens = rl.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, false
	}

	if now.Sub(b.lastWarningAt) > warningInterval {
		b.lastWarningAt = now
		return false, true
	}
	return false, false
}

func (rl *RateLimiterMiddleware) sendWarning(ctx context.Context, chatID int64) {
	if _, err := rl.bot.Send(tgbotapi.NewMessage(chatID, rl.warningText)); err != nil {
		ctxzap.Error(ctx, "failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}
