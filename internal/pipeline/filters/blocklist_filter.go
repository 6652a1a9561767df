package filters

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/pipeline"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
)

const (
	MatchTypeExact    = "EXACT"
	MatchTypeWildcard = "WILDCARD"
)

type BlocklistFilter struct {
	logger        *slog.Logger
	blocklistRepo repository.BlocklistRepository
	configRepo    repository.ChatConfigRepository
	statsRepo     repository.StatsRepository
}

func NewBlocklistFilter(logger *slog.Logger, blocklistRepo repository.BlocklistRepository, configRepo repository.ChatConfigRepository, statsRepo repository.StatsRepository) *BlocklistFilter {
	return &BlocklistFilter{
		logger:        logger,
		blocklistRepo: blocklistRepo,
		configRepo:    configRepo,
		statsRepo:     statsRepo,
	}
}

func (f *BlocklistFilter) Name() string {
	return "blocklist_filter"
}

func (f *BlocklistFilter) Process(ctx context.Context, payload pipeline.Payload) (*pipeline.Result, error) {
	if payload.Text == "" {
		return &pipeline.Result{IsAllowed: true}, nil
	}
	entries, err := f.blocklistRepo.FindCandidates(ctx, payload.ChatID)
	if err != nil {
		return nil, err
	}
	match := MatchText(entries, payload.Text)
	if match == nil {
		return &pipeline.Result{IsAllowed: true}, nil
	}

	action := match.Action
	if action == "" {
		if cfg, cfgErr := f.configRepo.GetConfig(payload.ChatID); cfgErr != nil {
			// The block stands; only the default action is lost.
			f.logger.Error("Failed to load chat config for blocklist action",
				"chat_id", payload.ChatID, "error", cfgErr)
		} else {
			action = cfg.DefaultBlocklistAction
		}
	}
	var duration time.Duration
	if match.ActionDurationMinutes != nil {
		duration = time.Duration(*match.ActionDurationMinutes) * time.Minute
	}

	metrics.IncBlockedMessages(f.Name())
	go func(chatID int64) {
		_ = f.statsRepo.Increment(context.Background(), chatID, "blocklist_hits")
	}(payload.ChatID)

	return &pipeline.Result{
		IsAllowed:      false,
		Reason:         "blocklisted phrase",
		FilterName:     f.Name(),
		ShouldDelete:   true,
		Action:         action,
		ActionDuration: duration,
	}, nil
}

// MatchText evaluates the text against all candidate patterns and returns
// the winning one, or nil. It never mutates anything: the same patterns and
// text always produce the same result. Among matches the highest severity
// wins; ties go to the earliest-created pattern.
func MatchText(entries []repository.BlocklistEntry, text string) *repository.BlocklistEntry {
	var best *repository.BlocklistEntry
	for i := range entries {
		e := &entries[i]
		if !patternMatches(e, text) {
			continue
		}
		if best == nil ||
			e.Severity > best.Severity ||
			(e.Severity == best.Severity && e.CreatedAt.Before(best.CreatedAt)) {
			best = e
		}
	}
	return best
}

func patternMatches(e *repository.BlocklistEntry, text string) bool {
	switch e.MatchType {
	case MatchTypeExact:
		return tokenContains(text, e.Pattern)
	case MatchTypeWildcard:
		return wildcardMatch(e.Pattern, text)
	}
	return false
}

// tokenContains reports whether pattern occurs in text as a whole token,
// case-insensitively: the match may not be flanked by letters or digits.
func tokenContains(text, pattern string) bool {
	text = strings.ToLower(text)
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return false
	}
	for i := 0; i <= len(text)-len(pattern); {
		j := strings.Index(text[i:], pattern)
		if j < 0 {
			return false
		}
		start := i + j
		end := start + len(pattern)
		if !wordCharBefore(text, start) && !wordCharAfter(text, end) {
			return true
		}
		i = start + 1
	}
	return false
}

func wordCharBefore(s string, idx int) bool {
	if idx == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordCharAfter(s string, idx int) bool {
	if idx >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wildcardMatch matches a glob pattern ('*' spans any run, '?' a single
// character) anywhere inside the text, case-insensitively.
func wildcardMatch(pattern, text string) bool {
	var b strings.Builder
	b.WriteString("(?is)")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
