package audit

// ActionType is the closed set of moderation events that can be written to
// a chat's log channel.
type ActionType string

const (
	ActionWarn      ActionType = "warn"
	ActionUnwarn    ActionType = "unwarn"
	ActionMute      ActionType = "mute"
	ActionUnmute    ActionType = "unmute"
	ActionBan       ActionType = "ban"
	ActionUnban     ActionType = "unban"
	ActionKick      ActionType = "kick"
	ActionDelete    ActionType = "delete"
	ActionLock      ActionType = "lock"
	ActionUnlock    ActionType = "unlock"
	ActionConfig    ActionType = "config"
	ActionFeature   ActionType = "feature"
	ActionFlood     ActionType = "flood"
	ActionBlocklist ActionType = "blocklist"
)

var hashtags = map[ActionType]string{
	ActionWarn:      "#WARN",
	ActionUnwarn:    "#UNWARN",
	ActionMute:      "#MUTE",
	ActionUnmute:    "#UNMUTE",
	ActionBan:       "#BAN",
	ActionUnban:     "#UNBAN",
	ActionKick:      "#KICK",
	ActionDelete:    "#DELETE",
	ActionLock:      "#LOCK",
	ActionUnlock:    "#UNLOCK",
	ActionConfig:    "#CONFIG",
	ActionFeature:   "#FEATURE",
	ActionFlood:     "#FLOOD",
	ActionBlocklist: "#BLOCKLIST",
}

// Hashtag returns the log-channel hashtag for an action, or "#EVENT" for an
// unknown one so a malformed entry still produces a searchable line.
func Hashtag(a ActionType) string {
	if tag, ok := hashtags[a]; ok {
		return tag
	}
	return "#EVENT"
}

// configChange reports whether the action is a pure configuration change,
// for which the reason line is omitted. Lock changes are the exception:
// they show the lock name instead.
func configChange(a ActionType) bool {
	switch a {
	case ActionConfig, ActionFeature, ActionLock, ActionUnlock:
		return true
	}
	return false
}

// Valid reports whether a is a known action type.
func Valid(a ActionType) bool {
	_, ok := hashtags[a]
	return ok
}
