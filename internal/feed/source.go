package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/model"
)

// Source is the external event source the feed polls. Dispatch pushes
// notifications; the client pulls them on a coarse interval.
type Source interface {
	Fetch(ctx context.Context) ([]model.Notification, error)
}

// RedisSource drains a redis list the dispatch system pushes notifications
// onto, one JSON document per entry.
type RedisSource struct {
	client *redis.Client
	key    string
	log    *zap.Logger
}

func NewRedisSource(client *redis.Client, key string, log *zap.Logger) *RedisSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSource{client: client, key: key, log: log}
}

func (s *RedisSource) Fetch(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	for {
		raw, err := s.client.LPop(ctx, s.key).Result()
		if errors.Is(err, redis.Nil) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("pop notification: %w", err)
		}
		var n model.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			s.log.Warn("dropping malformed notification", zap.Error(err))
			continue
		}
		out = append(out, n)
	}
}

// StaticSource hands out a fixed batch once. Used for seeded local runs.
type StaticSource struct {
	mu      sync.Mutex
	batch   []model.Notification
	drained bool
}

func NewStaticSource(batch []model.Notification) *StaticSource {
	return &StaticSource{batch: batch}
}

func (s *StaticSource) Fetch(_ context.Context) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drained {
		return nil, nil
	}
	s.drained = true
	return s.batch, nil
}

// Poller pulls the source into the feed on a fixed interval. Polling is
// advisory; a failed fetch is logged and retried next tick.
type Poller struct {
	feed     *Feed
	source   Source
	interval time.Duration
	log      *zap.Logger
}

func NewPoller(f *Feed, source Source, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{feed: f, source: source, interval: interval, log: log}
}

// Run polls until the context is cancelled. It drains the source once
// immediately so a fresh session sees pending notifications without waiting
// a full interval.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	batch, err := p.source.Fetch(ctx)
	if err != nil {
		p.log.Warn("notification poll failed", zap.Error(err))
		return
	}
	for _, n := range batch {
		if _, err := p.feed.Add(n); err != nil {
			p.log.Warn("dropping notification", zap.String("id", n.ID), zap.Error(err))
		}
	}
}
