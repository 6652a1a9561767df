package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

func newTestService(repos Repositories, ports Ports) *ModerationService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewModerationService(logger, repos, ports, Options{}).(*ModerationService)
}

func TestIssueWarning_BelowThreshold(t *testing.T) {
	repos := testRepos()
	warnings := &MockWarningRepo{
		AddAndCountFunc: func(_ context.Context, w *repository.Warning, maxWarnings int) (int, bool, error) {
			assert.Equal(t, 3, maxWarnings)
			ttl := w.ExpiresAt.Sub(w.CreatedAt)
			assert.Equal(t, 24*time.Hour, ttl)
			return 2, false, nil
		},
	}
	punishments := &MockPunishmentRepo{}
	repos.Warnings = warnings
	repos.Punishment = punishments
	svc := newTestService(repos, Ports{})

	result, err := svc.IssueWarning(context.Background(), 123, 456, 789, "spam")

	assert.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.False(t, result.Escalated)
	assert.Empty(t, punishments.Added)
}

func TestIssueWarning_ThresholdEscalates(t *testing.T) {
	repos := testRepos()
	repos.Warnings = &MockWarningRepo{
		AddAndCountFunc: func(_ context.Context, _ *repository.Warning, _ int) (int, bool, error) {
			return 0, true, nil
		},
	}
	punishments := &MockPunishmentRepo{}
	repos.Punishment = punishments
	svc := newTestService(repos, Ports{})

	result, err := svc.IssueWarning(context.Background(), 123, 456, 789, "third strike")

	assert.NoError(t, err)
	assert.True(t, result.Escalated)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, "mute", result.Action)
	assert.Equal(t, 60*time.Minute, result.Duration)

	if assert.Len(t, punishments.Added, 1) {
		p := punishments.Added[0]
		assert.Equal(t, "mute", p.Type)
		assert.Equal(t, "warn_escalation", p.Source)
		assert.Equal(t, int64(456), p.UserID)
		assert.NotEmpty(t, p.ID)
		if assert.NotNil(t, p.DurationSeconds) {
			assert.Equal(t, int64(3600), *p.DurationSeconds)
		}
	}
}

func TestIssueWarning_FreshCycleAfterEscalation(t *testing.T) {
	// After the threshold clears the ledger, the next warning starts a new
	// cycle at count 1 rather than escalating again.
	active := 2
	repos := testRepos()
	repos.Warnings = &MockWarningRepo{
		AddAndCountFunc: func(_ context.Context, _ *repository.Warning, maxWarnings int) (int, bool, error) {
			active++
			if active >= maxWarnings {
				active = 0
				return 0, true, nil
			}
			return active, false, nil
		},
	}
	punishments := &MockPunishmentRepo{}
	repos.Punishment = punishments
	svc := newTestService(repos, Ports{})

	first, err := svc.IssueWarning(context.Background(), 1, 2, 0, "crossing")
	assert.NoError(t, err)
	assert.True(t, first.Escalated)

	second, err := svc.IssueWarning(context.Background(), 1, 2, 0, "new cycle")
	assert.NoError(t, err)
	assert.False(t, second.Escalated)
	assert.Equal(t, 1, second.Count)
	assert.Len(t, punishments.Added, 1)
}

func TestIssueWarning_ConfigError(t *testing.T) {
	repos := testRepos()
	wantErr := errors.New("db down")
	repos.Config = &MockConfigRepo{Err: wantErr}
	svc := newTestService(repos, Ports{})

	_, err := svc.IssueWarning(context.Background(), 1, 2, 0, "x")
	assert.ErrorIs(t, err, wantErr)
}

func TestUnwarn(t *testing.T) {
	repos := testRepos()
	repos.Warnings = &MockWarningRepo{
		RemoveMostRecentFunc: func(_ context.Context, chatID, userID int64) (bool, error) {
			assert.Equal(t, int64(1), chatID)
			assert.Equal(t, int64(2), userID)
			return true, nil
		},
	}
	svc := newTestService(repos, Ports{})

	removed, err := svc.Unwarn(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.True(t, removed)
}

func TestUnwarn_NothingActive(t *testing.T) {
	svc := newTestService(testRepos(), Ports{})

	removed, err := svc.Unwarn(context.Background(), 1, 2)
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestIssuePunishment_Validation(t *testing.T) {
	svc := newTestService(testRepos(), Ports{})

	tests := []struct {
		name string
		req  PunishmentRequest
	}{
		{name: "unknown type", req: PunishmentRequest{ChatID: 1, UserID: 2, Type: "tickle"}},
		{name: "warn is not a punishment", req: PunishmentRequest{ChatID: 1, UserID: 2, Type: "warn"}},
		{name: "negative duration", req: PunishmentRequest{ChatID: 1, UserID: 2, Type: "mute", Duration: -time.Minute}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.IssuePunishment(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestIssuePunishment_Defaults(t *testing.T) {
	repos := testRepos()
	punishments := &MockPunishmentRepo{}
	repos.Punishment = punishments
	svc := newTestService(repos, Ports{})

	p, err := svc.IssuePunishment(context.Background(), PunishmentRequest{
		ChatID: 1, UserID: 2, Type: "ban", Reason: "raid",
	})

	assert.NoError(t, err)
	assert.Equal(t, "manual", p.Source)
	assert.Nil(t, p.DurationSeconds)
	assert.NotEmpty(t, p.ID)
	assert.Len(t, punishments.Added, 1)
}

func TestListWarnings_PageClamped(t *testing.T) {
	repos := testRepos()
	var gotOffset, gotLimit int
	repos.Warnings = &MockWarningRepo{
		ListActiveFunc: func(_ context.Context, _, _ int64, offset, limit int) ([]repository.Warning, int64, error) {
			gotOffset, gotLimit = offset, limit
			return []repository.Warning{{Reason: "a"}}, 1, nil
		},
	}
	svc := newTestService(repos, Ports{})

	list, total, err := svc.ListWarnings(context.Background(), 1, 2, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, listPageSize, gotLimit)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	_, _, err = svc.ListWarnings(context.Background(), 1, 2, 3)
	assert.NoError(t, err)
	assert.Equal(t, 2*listPageSize, gotOffset)
}
