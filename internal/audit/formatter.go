package audit

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// SourceManual marks operator-initiated actions; the source line is omitted
// for them since it carries no information.
const SourceManual = "manual"

// snippetLimit caps the message snippet, counted in runes of the escaped
// text so multi-byte content is not cut short.
const snippetLimit = 500

// ModerationLogEntry carries everything the formatter needs; it is built by
// the caller and never loaded from storage.
type ModerationLogEntry struct {
	ChatTitle string
	Action    ActionType
	AdminID   int64
	AdminName string
	UserID    int64
	UserName  string
	Duration  time.Duration
	Reason    string
	LockType  string
	Source    string
	Message   string
}

// Format renders a log-channel message in Telegram HTML. The output is
// deterministic for a given entry; the message snippet is escaped and
// truncated so a hostile message body cannot break the log markup.
func Format(entry ModerationLogEntry) string {
	var b strings.Builder

	b.WriteString(Hashtag(entry.Action))
	b.WriteString("\n<b>Chat:</b> ")
	b.WriteString(html.EscapeString(entry.ChatTitle))

	if entry.AdminID != 0 {
		b.WriteString("\n<b>Admin:</b> ")
		b.WriteString(mention(entry.AdminID, entry.AdminName))
	}
	if entry.UserID != 0 {
		b.WriteString("\n<b>User:</b> ")
		b.WriteString(mention(entry.UserID, entry.UserName))
	}

	if entry.Duration > 0 && (entry.Action == ActionMute || entry.Action == ActionBan) {
		b.WriteString("\n<b>Duration:</b> ")
		b.WriteString(formatDuration(entry.Duration))
	}

	if configChange(entry.Action) {
		if entry.LockType != "" && (entry.Action == ActionLock || entry.Action == ActionUnlock) {
			b.WriteString("\n<b>Lock:</b> ")
			b.WriteString(html.EscapeString(entry.LockType))
		}
	} else if entry.Reason != "" {
		b.WriteString("\n<b>Reason:</b> ")
		b.WriteString(html.EscapeString(entry.Reason))
	}

	if entry.Source != "" && entry.Source != SourceManual {
		b.WriteString("\n<b>Source:</b> ")
		b.WriteString(html.EscapeString(entry.Source))
	}

	if entry.Message != "" {
		b.WriteString("\n<b>Message:</b> <i>")
		b.WriteString(truncate(html.EscapeString(entry.Message), snippetLimit))
		b.WriteString("</i>")
	}

	return b.String()
}

func mention(id int64, name string) string {
	if name == "" {
		name = fmt.Sprintf("id%d", id)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, id, html.EscapeString(name))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// truncate caps s at limit runes. The input is already HTML-escaped, so a
// cut that lands inside an entity trims back to its '&'.
func truncate(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			cut := s[:i]
			if j := strings.LastIndexByte(cut, '&'); j >= 0 && !strings.ContainsRune(cut[j:], ';') {
				cut = cut[:j]
			}
			return cut + "…"
		}
		count++
	}
	return s
}
