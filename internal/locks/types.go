package locks

// LockType identifies one class of message content that a chat can lock.
// The set is closed: evaluation, administration UI and audit hashtags all
// key off these constants.
type LockType string

const (
	// Content locks.
	LockPhoto           LockType = "photo"
	LockVideo           LockType = "video"
	LockVideoNote       LockType = "videonote"
	LockAudio           LockType = "audio"
	LockVoice           LockType = "voice"
	LockDocument        LockType = "document"
	LockGif             LockType = "gif"
	LockSticker         LockType = "sticker"
	LockStickerAnimated LockType = "stickeranimated"
	LockStickerPremium  LockType = "stickerpremium"
	LockEmojiCustom     LockType = "emojicustom"
	LockGame            LockType = "game"
	LockPoll            LockType = "poll"
	LockDice            LockType = "dice"
	LockContact         LockType = "contact"
	LockLocation        LockType = "location"
	LockVenue           LockType = "venue"
	LockAlbum           LockType = "album"

	// Forward locks.
	LockForward        LockType = "forward"
	LockForwardUser    LockType = "forwarduser"
	LockForwardBot     LockType = "forwardbot"
	LockForwardChannel LockType = "forwardchannel"
	LockForwardStory   LockType = "forwardstory"
	LockAutoForward    LockType = "autoforward"

	// URL locks.
	LockURL        LockType = "url"
	LockInviteLink LockType = "invitelink"
	LockBotLink    LockType = "botlink"

	// Text locks.
	LockText      LockType = "text"
	LockCaption   LockType = "caption"
	LockRTL       LockType = "rtl"
	LockCyrillic  LockType = "cyrillic"
	LockArabic    LockType = "arabic"
	LockEmoji     LockType = "emoji"
	LockEmojiOnly LockType = "emojionly"
	LockSpoiler   LockType = "spoiler"
	LockUppercase LockType = "uppercase"

	// Entity locks.
	LockMention     LockType = "mention"
	LockTextMention LockType = "textmention"
	LockHashtag     LockType = "hashtag"
	LockCashtag     LockType = "cashtag"
	LockEmail       LockType = "email"
	LockPhone       LockType = "phone"
	LockCommand     LockType = "command"
	LockCode        LockType = "code"

	// Other locks.
	LockInline      LockType = "inline"
	LockButton      LockType = "button"
	LockAnonChannel LockType = "anonchannel"
)

// LockCategory groups lock types for administration and UI purposes only;
// it carries no evaluation semantics.
type LockCategory string

const (
	CategoryContent LockCategory = "CONTENT"
	CategoryForward LockCategory = "FORWARD"
	CategoryURL     LockCategory = "URL"
	CategoryText    LockCategory = "TEXT"
	CategoryEntity  LockCategory = "ENTITY"
	CategoryOther   LockCategory = "OTHER"
)

var categories = map[LockCategory][]LockType{
	CategoryContent: {
		LockPhoto, LockVideo, LockVideoNote, LockAudio, LockVoice,
		LockDocument, LockGif, LockSticker, LockStickerAnimated,
		LockStickerPremium, LockEmojiCustom, LockGame, LockPoll, LockDice,
		LockContact, LockLocation, LockVenue, LockAlbum,
	},
	CategoryForward: {
		LockForward, LockForwardUser, LockForwardBot, LockForwardChannel,
		LockForwardStory, LockAutoForward,
	},
	CategoryURL: {
		LockURL, LockInviteLink, LockBotLink,
	},
	CategoryText: {
		LockText, LockCaption, LockRTL, LockCyrillic, LockArabic,
		LockEmoji, LockEmojiOnly, LockSpoiler, LockUppercase,
	},
	CategoryEntity: {
		LockMention, LockTextMention, LockHashtag, LockCashtag,
		LockEmail, LockPhone, LockCommand, LockCode,
	},
	CategoryOther: {
		LockInline, LockButton, LockAnonChannel,
	},
}

var categoryByType = func() map[LockType]LockCategory {
	m := make(map[LockType]LockCategory)
	for cat, types := range categories {
		for _, t := range types {
			m[t] = cat
		}
	}
	return m
}()

// All returns every known lock type, grouped category by category.
func All() []LockType {
	var out []LockType
	for _, cat := range []LockCategory{
		CategoryContent, CategoryForward, CategoryURL,
		CategoryText, CategoryEntity, CategoryOther,
	} {
		out = append(out, categories[cat]...)
	}
	return out
}

// ByCategory returns the lock types belonging to the given category.
func ByCategory(cat LockCategory) []LockType {
	return categories[cat]
}

// CategoryOf returns the category of a lock type, or "" for an unknown type.
func CategoryOf(t LockType) LockCategory {
	return categoryByType[t]
}

// Valid reports whether t is one of the known lock types.
func Valid(t LockType) bool {
	_, ok := categoryByType[t]
	return ok
}

// AllowlistRelevant reports whether the lock type carries an extractable
// value (URL or command) that a chat allowlist can override.
func AllowlistRelevant(t LockType) bool {
	switch t {
	case LockURL, LockInviteLink, LockBotLink, LockCommand:
		return true
	}
	return false
}
