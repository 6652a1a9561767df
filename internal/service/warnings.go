package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

// EscalationResult reports the active warning count after an issue, and the
// threshold punishment when this warning crossed the configured maximum.
type EscalationResult struct {
	Count     int
	Escalated bool
	Action    string
	Duration  time.Duration
}

type PunishmentRequest struct {
	ChatID   int64
	UserID   int64
	IssuedBy int64
	Type     string
	Duration time.Duration
	Reason   string
	Source   string
}

const listPageSize = 10

// IssueWarning records a warning with the chat's TTL. Crossing the
// threshold clears the user's active warnings in the same transaction, so
// the escalation fires exactly once per crossing; the follow-up punishment
// is recorded here as well.
func (s *ModerationService) IssueWarning(ctx context.Context, chatID, userID, issuedBy int64, reason string) (*EscalationResult, error) {
	ctx, span := s.tracer.Start(ctx, "IssueWarning")
	defer span.End()

	cfg, err := s.repos.Config.GetConfig(chatID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	warning := &repository.Warning{
		ChatID:     chatID,
		UserID:     userID,
		IssuedByID: issuedBy,
		Reason:     reason,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(cfg.WarningTTLHours) * time.Hour),
	}

	count, escalated, err := s.repos.Warnings.AddAndCount(ctx, warning, cfg.MaxWarnings)
	if err != nil {
		return nil, err
	}

	metrics.WarningsIssued.Inc()
	go func(chatID int64) {
		_ = s.repos.Stats.Increment(context.Background(), chatID, "warnings_issued")
	}(chatID)

	result := &EscalationResult{Count: count}
	if !escalated {
		return result, nil
	}

	result.Escalated = true
	result.Count = 0
	result.Action = cfg.ThresholdAction
	result.Duration = time.Duration(cfg.ThresholdDurationMinutes) * time.Minute

	metrics.IncEscalations(cfg.ThresholdAction)
	go func(chatID int64) {
		_ = s.repos.Stats.Increment(context.Background(), chatID, "escalations")
	}(chatID)

	_, err = s.IssuePunishment(ctx, PunishmentRequest{
		ChatID:   chatID,
		UserID:   userID,
		IssuedBy: issuedBy,
		Type:     cfg.ThresholdAction,
		Duration: result.Duration,
		Reason:   fmt.Sprintf("warning limit reached (%d)", cfg.MaxWarnings),
		Source:   "warn_escalation",
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unwarn removes the user's most recent active warning; false when there is
// nothing to remove.
func (s *ModerationService) Unwarn(ctx context.Context, chatID, userID int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "Unwarn")
	defer span.End()
	return s.repos.Warnings.RemoveMostRecent(ctx, chatID, userID)
}

func (s *ModerationService) ListWarnings(ctx context.Context, chatID, userID int64, page int) ([]repository.Warning, int64, error) {
	ctx, span := s.tracer.Start(ctx, "ListWarnings")
	defer span.End()

	if page < 1 {
		page = 1
	}
	return s.repos.Warnings.ListActive(ctx, chatID, userID, (page-1)*listPageSize, listPageSize)
}

func (s *ModerationService) IssuePunishment(ctx context.Context, req PunishmentRequest) (*repository.Punishment, error) {
	ctx, span := s.tracer.Start(ctx, "IssuePunishment")
	defer span.End()

	if !isPunishment(req.Type) {
		return nil, fmt.Errorf("%w: unknown punishment type %q", ErrValidation, req.Type)
	}
	if req.Duration < 0 {
		return nil, fmt.Errorf("%w: punishment duration must not be negative", ErrValidation)
	}

	p := &repository.Punishment{
		ID:         uuid.New().String(),
		ChatID:     req.ChatID,
		UserID:     req.UserID,
		IssuedByID: req.IssuedBy,
		Type:       req.Type,
		Reason:     req.Reason,
		Source:     req.Source,
		CreatedAt:  time.Now(),
	}
	if req.Duration > 0 {
		seconds := int64(req.Duration / time.Second)
		p.DurationSeconds = &seconds
	}
	if p.Source == "" {
		p.Source = "manual"
	}

	if err := s.repos.Punishment.Add(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Punishment recorded",
		"chat_id", p.ChatID, "user_id", p.UserID, "type", p.Type, "source", p.Source)
	return p, nil
}

func (s *ModerationService) ListPunishmentsByChat(ctx context.Context, chatID int64, page int) ([]repository.Punishment, int64, error) {
	ctx, span := s.tracer.Start(ctx, "ListPunishmentsByChat")
	defer span.End()

	if page < 1 {
		page = 1
	}
	return s.repos.Punishment.ListByChat(ctx, chatID, (page-1)*listPageSize, listPageSize)
}

func (s *ModerationService) ListPunishmentsByUser(ctx context.Context, chatID, userID int64, page int) ([]repository.Punishment, int64, error) {
	ctx, span := s.tracer.Start(ctx, "ListPunishmentsByUser")
	defer span.End()

	if page < 1 {
		page = 1
	}
	return s.repos.Punishment.ListByUser(ctx, chatID, userID, (page-1)*listPageSize, listPageSize)
}
