package pipeline

import (
	"fmt"

	"github.com/AndVl1/chatkeep-sub003/internal/locks"
)

// Payload is one inbound message reduced to the attributes the moderation
// filters evaluate. The transport layer extracts these before calling the
// engine; the engine never parses platform updates itself.
type Payload struct {
	ChatID   int64
	SenderID int64
	Text     string

	// Attributes lists the content classes present on the message
	// (photo, forward, url, ...), one per matching lock type.
	Attributes []locks.LockType

	// Extracted values checked against chat allowlists.
	URLs     []string
	Commands []string

	// Author context for exemption matching.
	SenderIsBot     bool
	SenderChannelID int64
	StickerSetName  string
	ViaBotID        int64
}

func (p Payload) SenderKey() string {
	return fmt.Sprintf("%d:%d", p.ChatID, p.SenderID)
}
