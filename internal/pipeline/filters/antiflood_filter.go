package filters

import (
	"context"
	"sync"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/pipeline"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

// AntifloodFilter keeps a sliding window of message timestamps per
// (chat, user). The window state lives in memory: losing it on restart only
// forgives the current burst, never punishes anyone retroactively.
type AntifloodFilter struct {
	mu            sync.Mutex
	msgTimestamps map[string][]time.Time
	antifloodRepo repository.AntifloodRepository
	statsRepo     repository.StatsRepository
	now           func() time.Time
}

func NewAntifloodFilter(antifloodRepo repository.AntifloodRepository, statsRepo repository.StatsRepository) *AntifloodFilter {
	return &AntifloodFilter{
		msgTimestamps: make(map[string][]time.Time),
		antifloodRepo: antifloodRepo,
		statsRepo:     statsRepo,
		now:           time.Now,
	}
}

func (f *AntifloodFilter) Name() string {
	return "antiflood_filter"
}

func (f *AntifloodFilter) Process(ctx context.Context, payload pipeline.Payload) (*pipeline.Result, error) {
	settings, err := f.antifloodRepo.GetSettings(ctx, payload.ChatID)
	if err != nil {
		return nil, err
	}
	if !settings.Enabled || settings.MaxMessages <= 0 {
		return &pipeline.Result{IsAllowed: true}, nil
	}
	window := time.Duration(settings.TimeWindowSeconds) * time.Second

	f.mu.Lock()
	defer f.mu.Unlock()

	key := payload.SenderKey()
	now := f.now()

	var valid []time.Time
	for _, t := range f.msgTimestamps[key] {
		if now.Sub(t) <= window {
			valid = append(valid, t)
		}
	}
	valid = append(valid, now)

	if len(valid) > settings.MaxMessages {
		// Hard reset so the backlog cannot re-trigger on every message.
		delete(f.msgTimestamps, key)

		var duration time.Duration
		if settings.ActionDurationMinutes != nil {
			duration = time.Duration(*settings.ActionDurationMinutes) * time.Minute
		}

		metrics.IncBlockedMessages(f.Name())
		go func(chatID int64) {
			_ = f.statsRepo.Increment(context.Background(), chatID, "flood_triggers")
		}(payload.ChatID)

		return &pipeline.Result{
			IsAllowed:      false,
			Reason:         "message rate limit exceeded",
			FilterName:     f.Name(),
			ShouldDelete:   true,
			Action:         settings.Action,
			ActionDuration: duration,
		}, nil
	}

	f.msgTimestamps[key] = valid
	return &pipeline.Result{IsAllowed: true}, nil
}
