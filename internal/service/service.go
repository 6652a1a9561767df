package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/AndVl1/chatkeep-sub003/internal/audit"
	"github.com/AndVl1/chatkeep-sub003/internal/locks"
	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/pipeline"
	"github.com/AndVl1/chatkeep-sub003/internal/pipeline/filters"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

type Service interface {
	ModerateMessage(ctx context.Context, payload pipeline.Payload) (*pipeline.Result, error)

	InitChat(ctx context.Context, chatID int64) error
	GetChatConfig(ctx context.Context, chatID int64) (*repository.ChatConfig, error)
	UpdateChatConfig(ctx context.Context, cfg *repository.ChatConfig) error
	GetChatStats(ctx context.Context, chatID int64) (*repository.ChatStats, error)

	GetLocks(ctx context.Context, chatID int64) ([]LockStatus, error)
	SetLock(ctx context.Context, chatID int64, lockType string, locked bool, reason string) error
	AddLockExemption(ctx context.Context, e *repository.LockExemption) error
	RemoveLockExemption(ctx context.Context, chatID, id int64) error
	ListLockExemptions(ctx context.Context, chatID int64) ([]repository.LockExemption, error)
	AddAllowlistEntry(ctx context.Context, e *repository.LockAllowlistEntry) error
	RemoveAllowlistEntry(ctx context.Context, chatID, id int64) error
	ListAllowlist(ctx context.Context, chatID int64) ([]repository.LockAllowlistEntry, error)

	AddBlocklistPattern(ctx context.Context, entry *repository.BlocklistEntry) error
	RemoveBlocklistPattern(ctx context.Context, id int64) error
	ListBlocklist(ctx context.Context, chatID int64) ([]repository.BlocklistEntry, error)
	ListGlobalBlocklist(ctx context.Context) ([]repository.BlocklistEntry, error)
	MatchBlocklist(ctx context.Context, chatID int64, text string) (*repository.BlocklistEntry, error)

	IssueWarning(ctx context.Context, chatID, userID, issuedBy int64, reason string) (*EscalationResult, error)
	Unwarn(ctx context.Context, chatID, userID int64) (bool, error)
	ListWarnings(ctx context.Context, chatID, userID int64, page int) ([]repository.Warning, int64, error)
	IssuePunishment(ctx context.Context, req PunishmentRequest) (*repository.Punishment, error)
	ListPunishmentsByChat(ctx context.Context, chatID int64, page int) ([]repository.Punishment, int64, error)
	ListPunishmentsByUser(ctx context.Context, chatID, userID int64, page int) ([]repository.Punishment, int64, error)

	GetAntifloodSettings(ctx context.Context, chatID int64) (*repository.AntifloodSettings, error)
	UpdateAntifloodSettings(ctx context.Context, settings *repository.AntifloodSettings) error

	IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error)
	InvalidateAdmin(ctx context.Context, chatID, userID int64) error

	StoreOrGetMedia(ctx context.Context, content []byte, mimeType string) (string, error)
	GetFileReference(ctx context.Context, hash string) (string, bool, error)
	RecordFileReference(ctx context.Context, hash, fileID string) error
	ResolveFileID(ctx context.Context, hash, mediaType string, chatID int64) (string, error)

	ListFeatures(ctx context.Context, chatID int64) ([]FeatureStatus, error)
	SetFeature(ctx context.Context, chatID int64, key string, enabled bool, actorID int64) (*FeatureStatus, error)

	LogModerationAction(ctx context.Context, chatID int64, entry audit.ModerationLogEntry) error

	StartMetricsUpdater(ctx context.Context)
	StartRetentionTasks(ctx context.Context)
}

// LockStatus is the administration view of one lock type.
type LockStatus struct {
	LockType locks.LockType
	Category locks.LockCategory
	Locked   bool
	Reason   string
}

type Repositories struct {
	Config     repository.ChatConfigRepository
	Warnings   repository.WarningRepository
	Punishment repository.PunishmentRepository
	Blocklist  repository.BlocklistRepository
	Locks      repository.LockRepository
	Antiflood  repository.AntifloodRepository
	AdminCache repository.AdminCacheRepository
	Media      repository.MediaRepository
	Features   repository.FeatureRepository
	Stats      repository.StatsRepository
}

type Options struct {
	AdminCacheTTL     time.Duration
	MediaRetentionAge time.Duration
	SweepInterval     time.Duration
}

type ModerationService struct {
	logger   *slog.Logger
	repos    Repositories
	ports    Ports
	pipeline *pipeline.Manager
	tracer   trace.Tracer
	opts     Options
}

func NewModerationService(logger *slog.Logger, repos Repositories, ports Ports, opts Options) Service {
	antifloodFilter := filters.NewAntifloodFilter(repos.Antiflood, repos.Stats)
	lockFilter := filters.NewLockFilter(logger, repos.Locks, repos.Config, repos.Stats)
	blocklistFilter := filters.NewBlocklistFilter(logger, repos.Blocklist, repos.Config, repos.Stats)

	pm := pipeline.NewManager(antifloodFilter, lockFilter, blocklistFilter)

	if opts.AdminCacheTTL <= 0 {
		opts.AdminCacheTTL = 10 * time.Minute
	}
	if opts.MediaRetentionAge <= 0 {
		opts.MediaRetentionAge = 30 * 24 * time.Hour
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	return &ModerationService{
		logger:   logger,
		repos:    repos,
		ports:    ports,
		pipeline: pm,
		tracer:   otel.Tracer("moderation-service"),
		opts:     opts,
	}
}

// ModerateMessage runs the filter pipeline and records the follow-up state
// a blocking decision implies: a warning when lock warns are on or the
// filter asked for one, and a punishment when the filter carries one. A
// warning that crosses the threshold surfaces the escalation punishment on
// the returned result. The decision itself is returned to the caller, which
// owns enforcement.
func (s *ModerationService) ModerateMessage(ctx context.Context, payload pipeline.Payload) (*pipeline.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ModerateMessage")
	defer span.End()
	start := time.Now()

	res, err := s.pipeline.Process(ctx, payload)
	metrics.ObserveDecision(time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	if res.IsAllowed {
		return res, nil
	}

	s.logger.Debug("Message blocked",
		"chat_id", payload.ChatID, "user_id", payload.SenderID,
		"filter", res.FilterName, "reason", res.Reason)

	switch {
	case res.ShouldWarn || res.Action == "warn":
		reason := res.WarnReason
		if reason == "" {
			reason = res.Reason
		}
		esc, warnErr := s.IssueWarning(ctx, payload.ChatID, payload.SenderID, 0, reason)
		if warnErr != nil {
			// The blocking decision stands; only the ledger write failed.
			s.logger.Error("Failed to record warning for blocked message", "error", warnErr,
				"chat_id", payload.ChatID, "user_id", payload.SenderID)
			break
		}
		if esc.Escalated {
			// The threshold punishment is already recorded; the caller
			// still has to enforce it.
			res.Action = esc.Action
			res.ActionDuration = esc.Duration
		}
	case isPunishment(res.Action):
		_, punishErr := s.IssuePunishment(ctx, PunishmentRequest{
			ChatID:   payload.ChatID,
			UserID:   payload.SenderID,
			Type:     res.Action,
			Duration: res.ActionDuration,
			Reason:   res.Reason,
			Source:   res.FilterName,
		})
		if punishErr != nil {
			return nil, punishErr
		}
	}

	return res, nil
}

func (s *ModerationService) InitChat(ctx context.Context, chatID int64) error {
	_, span := s.tracer.Start(ctx, "InitChat")
	defer span.End()
	return s.repos.Config.InitConfig(chatID)
}

func (s *ModerationService) GetChatConfig(ctx context.Context, chatID int64) (*repository.ChatConfig, error) {
	_, span := s.tracer.Start(ctx, "GetChatConfig")
	defer span.End()
	return s.repos.Config.GetConfig(chatID)
}

func (s *ModerationService) UpdateChatConfig(ctx context.Context, cfg *repository.ChatConfig) error {
	_, span := s.tracer.Start(ctx, "UpdateChatConfig")
	defer span.End()

	if cfg.MaxWarnings < 1 {
		return fmt.Errorf("%w: max warnings must be at least 1", ErrValidation)
	}
	if cfg.WarningTTLHours < 1 {
		return fmt.Errorf("%w: warning TTL must be at least 1 hour", ErrValidation)
	}
	if !isPunishment(cfg.ThresholdAction) {
		return fmt.Errorf("%w: unknown threshold action %q", ErrValidation, cfg.ThresholdAction)
	}
	if cfg.ThresholdDurationMinutes < 0 {
		return fmt.Errorf("%w: threshold duration must not be negative", ErrValidation)
	}
	if !isBlocklistAction(cfg.DefaultBlocklistAction) {
		return fmt.Errorf("%w: unknown blocklist action %q", ErrValidation, cfg.DefaultBlocklistAction)
	}
	return s.repos.Config.UpdateConfig(cfg)
}

func (s *ModerationService) GetChatStats(ctx context.Context, chatID int64) (*repository.ChatStats, error) {
	_, span := s.tracer.Start(ctx, "GetChatStats")
	defer span.End()
	return s.repos.Stats.GetTotals(ctx, chatID)
}

func (s *ModerationService) GetLocks(ctx context.Context, chatID int64) ([]LockStatus, error) {
	ctx, span := s.tracer.Start(ctx, "GetLocks")
	defer span.End()

	rows, err := s.repos.Locks.GetLocks(ctx, chatID)
	if err != nil {
		return nil, err
	}
	statuses := make([]LockStatus, 0, len(locks.All()))
	for _, lt := range locks.All() {
		status := LockStatus{LockType: lt, Category: locks.CategoryOf(lt)}
		if row, ok := rows[string(lt)]; ok {
			status.Locked = row.Locked
			status.Reason = row.Reason
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *ModerationService) SetLock(ctx context.Context, chatID int64, lockType string, locked bool, reason string) error {
	ctx, span := s.tracer.Start(ctx, "SetLock")
	defer span.End()

	if !locks.Valid(locks.LockType(lockType)) {
		return fmt.Errorf("%w: unknown lock type %q", ErrValidation, lockType)
	}
	return s.repos.Locks.SetLock(ctx, chatID, lockType, locked, reason)
}

func (s *ModerationService) AddLockExemption(ctx context.Context, e *repository.LockExemption) error {
	ctx, span := s.tracer.Start(ctx, "AddLockExemption")
	defer span.End()

	if e.LockType != nil && !locks.Valid(locks.LockType(*e.LockType)) {
		return fmt.Errorf("%w: unknown lock type %q", ErrValidation, *e.LockType)
	}
	switch e.ExemptionType {
	case filters.ExemptionUser, filters.ExemptionBot, filters.ExemptionChannel,
		filters.ExemptionStickerSet, filters.ExemptionInlineBot:
	default:
		return fmt.Errorf("%w: unknown exemption type %q", ErrValidation, e.ExemptionType)
	}
	return s.repos.Locks.AddExemption(ctx, e)
}

func (s *ModerationService) RemoveLockExemption(ctx context.Context, chatID, id int64) error {
	ctx, span := s.tracer.Start(ctx, "RemoveLockExemption")
	defer span.End()

	removed, err := s.repos.Locks.RemoveExemption(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: exemption %d in chat %d", ErrNotFound, id, chatID)
	}
	return nil
}

func (s *ModerationService) ListLockExemptions(ctx context.Context, chatID int64) ([]repository.LockExemption, error) {
	ctx, span := s.tracer.Start(ctx, "ListLockExemptions")
	defer span.End()
	return s.repos.Locks.FindExemptions(ctx, chatID)
}

func (s *ModerationService) AddAllowlistEntry(ctx context.Context, e *repository.LockAllowlistEntry) error {
	ctx, span := s.tracer.Start(ctx, "AddAllowlistEntry")
	defer span.End()

	switch e.AllowlistType {
	case filters.AllowlistURL, filters.AllowlistCommand, filters.AllowlistDomain:
	default:
		return fmt.Errorf("%w: unknown allowlist type %q", ErrValidation, e.AllowlistType)
	}
	if strings.TrimSpace(e.Pattern) == "" {
		return fmt.Errorf("%w: empty allowlist pattern", ErrValidation)
	}
	return s.repos.Locks.AddAllowlistEntry(ctx, e)
}

func (s *ModerationService) RemoveAllowlistEntry(ctx context.Context, chatID, id int64) error {
	ctx, span := s.tracer.Start(ctx, "RemoveAllowlistEntry")
	defer span.End()

	removed, err := s.repos.Locks.RemoveAllowlistEntry(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: allowlist entry %d in chat %d", ErrNotFound, id, chatID)
	}
	return nil
}

func (s *ModerationService) ListAllowlist(ctx context.Context, chatID int64) ([]repository.LockAllowlistEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ListAllowlist")
	defer span.End()
	return s.repos.Locks.FindAllowlist(ctx, chatID)
}

func (s *ModerationService) AddBlocklistPattern(ctx context.Context, entry *repository.BlocklistEntry) error {
	ctx, span := s.tracer.Start(ctx, "AddBlocklistPattern")
	defer span.End()

	if strings.TrimSpace(entry.Pattern) == "" {
		return fmt.Errorf("%w: empty blocklist pattern", ErrValidation)
	}
	if entry.MatchType != filters.MatchTypeExact && entry.MatchType != filters.MatchTypeWildcard {
		return fmt.Errorf("%w: unknown match type %q", ErrValidation, entry.MatchType)
	}
	if entry.Severity < 1 || entry.Severity > 10 {
		return fmt.Errorf("%w: severity %d out of range [1,10]", ErrValidation, entry.Severity)
	}
	if entry.Action != "" && !isBlocklistAction(entry.Action) {
		return fmt.Errorf("%w: unknown blocklist action %q", ErrValidation, entry.Action)
	}
	if entry.ActionDurationMinutes != nil && *entry.ActionDurationMinutes < 0 {
		return fmt.Errorf("%w: action duration must not be negative", ErrValidation)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return s.repos.Blocklist.Add(ctx, entry)
}

func (s *ModerationService) RemoveBlocklistPattern(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "RemoveBlocklistPattern")
	defer span.End()

	removed, err := s.repos.Blocklist.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: blocklist pattern %d", ErrNotFound, id)
	}
	return nil
}

func (s *ModerationService) ListBlocklist(ctx context.Context, chatID int64) ([]repository.BlocklistEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ListBlocklist")
	defer span.End()
	return s.repos.Blocklist.ListByChat(ctx, chatID)
}

func (s *ModerationService) ListGlobalBlocklist(ctx context.Context) ([]repository.BlocklistEntry, error) {
	ctx, span := s.tracer.Start(ctx, "ListGlobalBlocklist")
	defer span.End()
	return s.repos.Blocklist.ListGlobal(ctx)
}

func (s *ModerationService) MatchBlocklist(ctx context.Context, chatID int64, text string) (*repository.BlocklistEntry, error) {
	ctx, span := s.tracer.Start(ctx, "MatchBlocklist")
	defer span.End()

	entries, err := s.repos.Blocklist.FindCandidates(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return filters.MatchText(entries, text), nil
}

func (s *ModerationService) GetAntifloodSettings(ctx context.Context, chatID int64) (*repository.AntifloodSettings, error) {
	ctx, span := s.tracer.Start(ctx, "GetAntifloodSettings")
	defer span.End()
	return s.repos.Antiflood.GetSettings(ctx, chatID)
}

func (s *ModerationService) UpdateAntifloodSettings(ctx context.Context, settings *repository.AntifloodSettings) error {
	ctx, span := s.tracer.Start(ctx, "UpdateAntifloodSettings")
	defer span.End()

	if settings.MaxMessages < 1 {
		return fmt.Errorf("%w: max messages must be at least 1", ErrValidation)
	}
	if settings.TimeWindowSeconds < 1 {
		return fmt.Errorf("%w: time window must be at least 1 second", ErrValidation)
	}
	if !isBlocklistAction(settings.Action) {
		return fmt.Errorf("%w: unknown antiflood action %q", ErrValidation, settings.Action)
	}
	if settings.ActionDurationMinutes != nil && *settings.ActionDurationMinutes < 0 {
		return fmt.Errorf("%w: action duration must not be negative", ErrValidation)
	}
	return s.repos.Antiflood.UpsertSettings(ctx, settings)
}

// LogModerationAction formats the entry and delivers it to the chat's log
// channel. Delivery is best-effort: the moderation state the entry
// describes is already committed and is never rolled back on send failure.
func (s *ModerationService) LogModerationAction(ctx context.Context, chatID int64, entry audit.ModerationLogEntry) error {
	ctx, span := s.tracer.Start(ctx, "LogModerationAction")
	defer span.End()

	cfg, err := s.repos.Config.GetConfig(chatID)
	if err != nil {
		return err
	}
	if cfg.LogChannelID == 0 || s.ports.LogChannel == nil {
		return nil
	}
	text := audit.Format(entry)
	if err := s.ports.LogChannel.Send(ctx, cfg.LogChannelID, text); err != nil {
		s.logger.Warn("Failed to deliver moderation log", "chat_id", chatID, "error", err)
		return fmt.Errorf("log delivery failed: %w", err)
	}
	return nil
}

func isPunishment(action string) bool {
	switch action {
	case "mute", "ban", "kick":
		return true
	}
	return false
}

func isBlocklistAction(action string) bool {
	switch action {
	case "mute", "ban", "kick", "warn", "delete":
		return true
	}
	return false
}
