// Package realtime provides the Redis-backed event bus that announces
// newly created problems to in-flight watchers.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/quizdeck/quizdeck/pkg/lifecycle"
)

// ProblemCreated announces a generated problem persisted to the pool.
// Stem carries the problem's content marker so subscribers can recognize
// failure sentinels without a round trip; Message carries the failure
// detail for sentinel events.
type ProblemCreated struct {
	ProblemID   uuid.UUID `json:"problemId"`
	ProblemType string    `json:"problemType"`
	UserID      string    `json:"userId"`
	Stem        string    `json:"stem"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Bus publishes and subscribes to per-user problem creation events.
type Bus interface {
	// Start registers startup and shutdown hooks with the coordinator.
	Start(lc *lifecycle.Coordinator) error
	// PublishProblemCreated announces a new problem on the owner's channel.
	PublishProblemCreated(ctx context.Context, event ProblemCreated) error
	// SubscribeProblems delivers problem creation events for a user until
	// the returned unsubscribe function is called or ctx is cancelled.
	// Malformed payloads are logged and dropped.
	SubscribeProblems(ctx context.Context, userID string) (<-chan ProblemCreated, func(), error)
}

type redisBus struct {
	client      *redis.Client
	prefix      string
	dialTimeout time.Duration
	logger      *slog.Logger
}

// New creates a Redis event bus. The connection is verified on Start.
func New(cfg *Config, logger *slog.Logger) Bus {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	return &redisBus{
		client:      client,
		prefix:      cfg.ChannelPrefix,
		dialTimeout: cfg.DialTimeoutDuration(),
		logger:      logger.With("system", "realtime"),
	}
}

func (b *redisBus) Start(lc *lifecycle.Coordinator) error {
	b.logger.Info("starting realtime bus")

	lc.OnStartup(func() {
		pingCtx, cancel := context.WithTimeout(lc.Context(), b.dialTimeout)
		defer cancel()

		if err := b.client.Ping(pingCtx).Err(); err != nil {
			b.logger.Error("redis ping failed", "error", err)
			return
		}

		b.logger.Info("realtime bus connected")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := b.client.Close(); err != nil {
			b.logger.Error("redis close failed", "error", err)
		}
	})

	return nil
}

func (b *redisBus) PublishProblemCreated(ctx context.Context, event ProblemCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel(event.UserID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

func (b *redisBus) SubscribeProblems(ctx context.Context, userID string) (<-chan ProblemCreated, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel(userID))

	// confirms the subscription is active before events can be missed
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	events := make(chan ProblemCreated)
	done := make(chan struct{})

	go func() {
		defer close(events)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var event ProblemCreated
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("bad event payload", "error", err)
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { close(done) })
	}

	return events, unsubscribe, nil
}

func (b *redisBus) channel(userID string) string {
	return fmt.Sprintf("%s:%s", b.prefix, userID)
}
