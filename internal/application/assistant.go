package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
)

const (
	msgNoCamera      = "Face recognition not possible. No cameras detected."
	msgLookAtCamera  = "Initializing face recognition. Please look at your camera."
	msgNoImage       = "Obtaining user image was unsuccessful."
	msgNoUsers       = "No user names present in memory."
	msgUnknownUser   = "User not recognized. As I can understand only native English names, please give an English name or alias as a closest English analogue to be used as identification."
	msgRepeatName    = "Could not understand name. Please repeat."
	msgWaiting       = "waiting for command"
	msgRepeatCommand = "Could not understand command. Please repeat after message."
	msgGiveUp        = "I am sorry. I am having a problem understanding command. Program terminated"
	msgInvalid       = "I am sorry, I could not find a valid command. Please try again."
	msgNoWeather     = "weather forecast unsuccessful"
	msgNoWikiItem    = "I am sorry, item of interest not recognized."
)

var errGaveUp = errors.New("gave up listening")

type SessionConfig struct {
	// AssistantName is used in the introduction.
	AssistantName  string
	ListenAttempts int
	// FaceUnavailable reports that face recognition was wanted but could not
	// be set up, as opposed to being switched off.
	FaceUnavailable bool
}

func (c SessionConfig) introduction() string {
	return fmt.Sprintf("I am %s, your personal voice assistant. I can tell the time, play videos from youtube, "+
		"give information about current weather conditions in major cities around the world, "+
		"perform searches in wikipedia and tell jokes.", c.AssistantName)
}

// Dependencies bundles the collaborators of a session. Faces and Enroller may be nil
// when face recognition is disabled.
type Dependencies struct {
	Faces        FaceIdentifier
	Enroller     FaceEnroller
	Listener     Listener
	Speaker      Speaker
	Parser       CommandParser
	Weather      WeatherService
	Encyclopedia Encyclopedia
	Player       VideoPlayer
	Jokes        JokeTeller
	Notifier     Notifier
	Now          func() time.Time
}

type Assistant struct {
	deps   Dependencies
	cfg    SessionConfig
	logger *slog.Logger

	user string
}

func NewAssistant(deps Dependencies, cfg SessionConfig, logger *slog.Logger) *Assistant {
	if deps.Notifier == nil {
		deps.Notifier = &NoopNotifier{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.AssistantName == "" {
		cfg.AssistantName = "Jenny"
	}
	if cfg.ListenAttempts <= 0 {
		cfg.ListenAttempts = 3
	}
	return &Assistant{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
	}
}

// User is the identity recognized or enrolled during the session, if any.
func (a *Assistant) User() string {
	return a.user
}

// Run greets the user and serves commands until the user leaves, listening
// fails repeatedly, or ctx is canceled.
func (a *Assistant) Run(ctx context.Context) error {
	a.logger = a.logger.With("session", uuid.New().String())

	a.logger.Info("starting listener")
	if err := a.deps.Listener.Start(ctx); err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}
	defer a.deps.Listener.Stop()

	if err := a.greet(ctx); err != nil {
		return err
	}

	a.logger.Info("assistant ready, listening for commands")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		done, err := a.processOneCommand(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("processing command", "error", err)
		}
		if done {
			a.logger.Info("session finished", "user", a.user)
			return nil
		}
	}
}

func (a *Assistant) say(ctx context.Context, text string) {
	if err := a.deps.Speaker.Say(ctx, text); err != nil {
		a.logger.Warn("speaking", "error", err, "text", text)
	}
}

func (a *Assistant) notify(ctx context.Context, message string) {
	if err := a.deps.Notifier.Notify(ctx, message); err != nil {
		a.logger.Error("notifying", "error", err)
	}
}

func (a *Assistant) greet(ctx context.Context) error {
	if a.deps.Faces == nil {
		if a.cfg.FaceUnavailable {
			a.say(ctx, msgNoCamera)
			return nil
		}
		a.say(ctx, a.cfg.introduction())
		return nil
	}

	if _, err := a.deps.Faces.Probe(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Info("face recognition unavailable", "error", err)
		a.say(ctx, msgNoCamera)
		return nil
	}

	a.say(ctx, msgLookAtCamera)

	result, frame, err := a.deps.Faces.Identify(ctx)
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, domain.ErrNoCamera):
		a.say(ctx, msgNoCamera)
		return nil
	case errors.Is(err, domain.ErrNoFaceFound):
		a.say(ctx, msgNoImage)
		a.say(ctx, a.cfg.introduction())
		return nil
	case err != nil:
		a.logger.Error("identifying user", "error", err)
		a.say(ctx, a.cfg.introduction())
		return nil
	}

	a.logger.Info("identification finished", "kind", result.Kind, "name", result.Name)

	switch result.Kind {
	case domain.MatchIdentified:
		a.release(frame)
		a.user = result.Name
		a.say(ctx, fmt.Sprintf("Hello %s. What can I do for you?", result.Name))
	case domain.MatchNoMatch, domain.MatchRegistryEmpty:
		if result.Kind == domain.MatchRegistryEmpty {
			a.say(ctx, msgNoUsers)
		}
		return a.enroll(ctx, frame)
	default:
		a.release(frame)
		a.say(ctx, a.cfg.introduction())
	}
	return nil
}

func (a *Assistant) release(frame *domain.CapturedFrame) {
	if err := frame.Release(); err != nil {
		a.logger.Warn("releasing frame", "error", err)
	}
}

func (a *Assistant) enroll(ctx context.Context, frame *domain.CapturedFrame) error {
	a.say(ctx, msgUnknownUser)

	name, err := a.listen(ctx, "", msgRepeatName, "")
	if err != nil {
		a.release(frame)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("no name given", "error", err)
		a.say(ctx, a.cfg.introduction())
		return nil
	}

	if a.deps.Enroller == nil {
		a.release(frame)
		a.user = name
		a.say(ctx, a.cfg.introduction())
		return nil
	}

	stored, err := a.deps.Enroller.Enroll(name, frame)
	if err != nil {
		a.release(frame)
		a.logger.Error("enrolling user", "name", name, "error", err)
		a.say(ctx, a.cfg.introduction())
		return nil
	}

	a.user = stored
	a.say(ctx, fmt.Sprintf("%s added to memory", stored))
	a.notify(ctx, fmt.Sprintf("New user enrolled: %s", stored))
	a.say(ctx, a.cfg.introduction())
	return nil
}

// listen retries recognition up to ListenAttempts times. prompt is spoken
// before each attempt, retry after each failed attempt except the last, and
// final when every attempt failed.
func (a *Assistant) listen(ctx context.Context, prompt, retry, final string) (string, error) {
	var text string

	retryCfg := infra.FixedRetryConfig(a.cfg.ListenAttempts, 0)
	retryCfg.OnRetry = func(attempt int, err error) {
		a.logger.Debug("listening failed", "attempt", attempt, "error", err)
		if retry != "" {
			a.say(ctx, retry)
		}
	}

	err := infra.WithRetry(ctx, retryCfg, func() error {
		if prompt != "" {
			a.say(ctx, prompt)
		}
		heard, err := a.deps.Listener.Listen(ctx)
		if err != nil {
			return err
		}
		text = heard
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if final != "" {
			a.say(ctx, final)
		}
		return "", fmt.Errorf("%w: %w", errGaveUp, err)
	}

	a.logger.Info("heard", "text", text)
	return text, nil
}

// processOneCommand reports true when the session should end.
func (a *Assistant) processOneCommand(ctx context.Context) (bool, error) {
	text, err := a.listen(ctx, msgWaiting, msgRepeatCommand, msgGiveUp)
	if err != nil {
		if errors.Is(err, errGaveUp) {
			a.logger.Warn("giving up on commands", "error", err)
			return true, nil
		}
		return false, err
	}

	cmd, err := a.deps.Parser.Parse(ctx, text)
	if err != nil {
		return false, fmt.Errorf("parsing command: %w", err)
	}

	a.logger.Info("parsed command", "action", cmd.Action, "argument", cmd.Argument)

	if cmd.Action == domain.ActionUnknown {
		a.say(ctx, msgInvalid)
		return false, nil
	}

	if err := a.executeCommand(ctx, cmd); err != nil {
		a.notify(ctx, fmt.Sprintf("Error: %s", err.Error()))
		return cmd.Action.EndsSession(), fmt.Errorf("executing %s: %w", cmd.Action, err)
	}

	return cmd.Action.EndsSession(), nil
}

func (a *Assistant) farewell() string {
	if a.user == "" {
		return "I am glad to be of service. Have a nice day!"
	}
	return fmt.Sprintf("I am glad to be of service. Have a nice day, %s!", a.user)
}

func (a *Assistant) executeCommand(ctx context.Context, cmd *domain.Command) error {
	switch cmd.Action {
	case domain.ActionPlay:
		a.say(ctx, "playing "+cmd.Argument)
		err := a.deps.Player.Play(ctx, cmd.Argument)
		a.say(ctx, a.farewell())
		return err

	case domain.ActionTime:
		a.say(ctx, "Current time is "+a.deps.Now().Format("03:04 PM"))
		return nil

	case domain.ActionJoke:
		a.say(ctx, a.deps.Jokes.Joke())
		return nil

	case domain.ActionBye:
		a.say(ctx, a.farewell())
		return nil

	case domain.ActionWeather:
		lines, err := a.deps.Weather.Current(ctx, cmd.Argument)
		if err != nil {
			a.logger.Warn("weather lookup failed", "city", cmd.Argument, "error", err)
			a.say(ctx, msgNoWeather)
			return nil
		}
		for _, line := range lines {
			a.say(ctx, line)
		}
		return nil

	case domain.ActionWiki:
		if cmd.Argument == "" {
			a.say(ctx, msgNoWikiItem)
			return nil
		}
		summary, err := a.deps.Encyclopedia.Summary(ctx, cmd.Argument)
		if err != nil {
			a.logger.Warn("encyclopedia lookup failed", "topic", cmd.Argument, "error", err)
			a.say(ctx, msgNoWikiItem)
			return nil
		}
		a.say(ctx, summary)
		return nil

	default:
		return fmt.Errorf("unknown action: %s", cmd.Action)
	}
}
