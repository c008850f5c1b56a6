package domain

type Action string

const (
	ActionPlay    Action = "play"
	ActionTime    Action = "time"
	ActionJoke    Action = "joke"
	ActionBye     Action = "bye"
	ActionWeather Action = "weather"
	ActionWiki    Action = "wiki"
	ActionUnknown Action = "unknown"
)

// EndsSession reports whether the assistant stops listening after the action.
func (a Action) EndsSession() bool {
	return a == ActionPlay || a == ActionBye
}

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

type Command struct {
	Action Action
	// Argument is the song, city, or topic the action applies to.
	Argument string
	RawText  string
}
