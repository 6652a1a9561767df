package filters

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/AndVl1/chatkeep-sub003/internal/locks"
	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/pipeline"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
	"github.com/AndVl1/chatkeep-sub003/internal/utils"
)

const (
	ExemptionUser       = "USER"
	ExemptionBot        = "BOT"
	ExemptionChannel    = "CHANNEL"
	ExemptionStickerSet = "STICKER_SET"
	ExemptionInlineBot  = "INLINE_BOT"

	AllowlistURL     = "URL"
	AllowlistCommand = "COMMAND"
	AllowlistDomain  = "DOMAIN"
)

type LockFilter struct {
	logger     *slog.Logger
	lockRepo   repository.LockRepository
	configRepo repository.ChatConfigRepository
	statsRepo  repository.StatsRepository
}

func NewLockFilter(logger *slog.Logger, lockRepo repository.LockRepository, configRepo repository.ChatConfigRepository, statsRepo repository.StatsRepository) *LockFilter {
	return &LockFilter{
		logger:     logger,
		lockRepo:   lockRepo,
		configRepo: configRepo,
		statsRepo:  statsRepo,
	}
}

func (f *LockFilter) Name() string {
	return "lock_filter"
}

func (f *LockFilter) Process(ctx context.Context, payload pipeline.Payload) (*pipeline.Result, error) {
	if len(payload.Attributes) == 0 {
		return &pipeline.Result{IsAllowed: true}, nil
	}

	chatLocks, err := f.lockRepo.GetLocks(ctx, payload.ChatID)
	if err != nil {
		return nil, err
	}

	var (
		exemptions []repository.LockExemption
		allowlist  []repository.LockAllowlistEntry
		loaded     bool
	)

	for _, attr := range payload.Attributes {
		lock, ok := chatLocks[string(attr)]
		if !ok || !lock.Locked {
			continue
		}
		if !loaded {
			exemptions, err = f.lockRepo.FindExemptions(ctx, payload.ChatID)
			if err != nil {
				return nil, err
			}
			allowlist, err = f.lockRepo.FindAllowlist(ctx, payload.ChatID)
			if err != nil {
				return nil, err
			}
			loaded = true
		}
		if authorExempt(exemptions, attr, payload) {
			continue
		}
		if locks.AllowlistRelevant(attr) && valuesAllowlisted(allowlist, attr, payload) {
			continue
		}

		metrics.IncBlockedMessages(f.Name())
		go func(chatID int64) {
			_ = f.statsRepo.Increment(context.Background(), chatID, "lock_blocks")
		}(payload.ChatID)

		res := &pipeline.Result{
			IsAllowed:    false,
			Reason:       lockReason(lock),
			FilterName:   f.Name(),
			ShouldDelete: true,
		}
		if cfg, cfgErr := f.configRepo.GetConfig(payload.ChatID); cfgErr != nil {
			// The block stands; only the warn follow-up is lost.
			f.logger.Error("Failed to load chat config for lock warn",
				"chat_id", payload.ChatID, "error", cfgErr)
		} else if cfg.LockWarnsEnabled {
			res.ShouldWarn = true
			res.WarnReason = string(attr)
		}
		return res, nil
	}
	return &pipeline.Result{IsAllowed: true}, nil
}

func lockReason(lock repository.ChatLock) string {
	if lock.Reason != "" {
		return lock.Reason
	}
	return "locked content: " + lock.LockType
}

// authorExempt reports whether any exemption row covers the message author
// for the checked lock type. A row with a nil lock type covers all locks.
func authorExempt(exemptions []repository.LockExemption, attr locks.LockType, payload pipeline.Payload) bool {
	for _, e := range exemptions {
		if e.LockType != nil && *e.LockType != string(attr) {
			continue
		}
		switch e.ExemptionType {
		case ExemptionUser:
			if e.ExemptionValue == strconv.FormatInt(payload.SenderID, 10) {
				return true
			}
		case ExemptionBot:
			if payload.SenderIsBot &&
				(e.ExemptionValue == "" || e.ExemptionValue == strconv.FormatInt(payload.SenderID, 10)) {
				return true
			}
		case ExemptionChannel:
			if payload.SenderChannelID != 0 &&
				(e.ExemptionValue == "" || e.ExemptionValue == strconv.FormatInt(payload.SenderChannelID, 10)) {
				return true
			}
		case ExemptionStickerSet:
			if payload.StickerSetName != "" &&
				strings.EqualFold(e.ExemptionValue, payload.StickerSetName) {
				return true
			}
		case ExemptionInlineBot:
			if payload.ViaBotID != 0 &&
				e.ExemptionValue == strconv.FormatInt(payload.ViaBotID, 10) {
				return true
			}
		}
	}
	return false
}

// valuesAllowlisted reports whether every extracted value relevant to the
// lock type is covered by an allowlist entry. One unlisted URL keeps the
// lock in force.
func valuesAllowlisted(allowlist []repository.LockAllowlistEntry, attr locks.LockType, payload pipeline.Payload) bool {
	if attr == locks.LockCommand {
		return allValuesMatch(allowlist, payload.Commands, commandAllowed)
	}
	return allValuesMatch(allowlist, payload.URLs, urlAllowed)
}

func allValuesMatch(allowlist []repository.LockAllowlistEntry, values []string, match func(repository.LockAllowlistEntry, string) bool) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		allowed := false
		for _, entry := range allowlist {
			if match(entry, v) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

func urlAllowed(entry repository.LockAllowlistEntry, url string) bool {
	switch entry.AllowlistType {
	case AllowlistURL:
		if strings.ContainsAny(entry.Pattern, "*?") {
			return wildcardMatch(entry.Pattern, url)
		}
		return strings.EqualFold(entry.Pattern, url)
	case AllowlistDomain:
		domain := utils.NormalizeDomain(entry.Pattern)
		return domain != "" && strings.Contains(strings.ToLower(url), domain)
	}
	return false
}

func commandAllowed(entry repository.LockAllowlistEntry, command string) bool {
	if entry.AllowlistType != AllowlistCommand {
		return false
	}
	return strings.EqualFold(strings.TrimPrefix(entry.Pattern, "/"), strings.TrimPrefix(command, "/"))
}
