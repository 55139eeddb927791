package main

import (
	"fmt"
	"hoteldesk/pkg/client"
	"hoteldesk/pkg/config"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/events"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/session"
	"io"
	"sync"

	"github.com/urfave/cli/v2"
)

// ExitLoggedOut is the exit status when a command needs a session that has
// ended.
const ExitLoggedOut = 2

const loginHint = "Your session has ended. Run `hoteldesk login --email <email>` to sign in again."

// cliEnv is what every command runs against. Tests preset store to avoid
// touching the configured backend.
type cliEnv struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	log    *logger.Logger

	store   session.Store
	closers []func()
	api     *client.Client

	mu        sync.Mutex
	sampled   []string
	loggedOut bool
}

func newEnv(cfg *config.Config, out, errOut io.Writer) *cliEnv {
	return &cliEnv{cfg: cfg, out: out, errOut: errOut}
}

// connect builds the session store, the optional event publisher and the API
// client from the global flags.
func (e *cliEnv) connect(c *cli.Context) error {
	e.mu.Lock()
	e.sampled, e.loggedOut = nil, false
	e.mu.Unlock()

	if url := c.String("api-url"); url != "" {
		e.cfg.APIBaseURL = url
	}
	if profile := c.String("profile"); profile != "" {
		e.cfg.SessionProfile = profile
	}

	level := logger.ERROR
	if c.Bool("verbose") {
		level = e.cfg.LogLevel
	}
	e.log = logger.New(logger.Config{Level: level, Format: logger.TEXT, Output: e.errOut, Service: ServiceName})

	if e.store == nil {
		store, closeStore, err := session.Open(c.Context, e.cfg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("cannot open the %s session store: %v", e.cfg.SessionBackend, err), 1)
		}
		e.store = store
		e.closers = append(e.closers, closeStore)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if e.cfg.EventsEnabled() {
		kafkaPublisher, err := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: e.cfg.KafkaBrokers,
			Topic:   e.cfg.EventsTopic,
			Source:  ServiceName,
		}, e.log.Component("events"))
		if err != nil {
			e.log.Warn("Session events disabled", "error", err)
		} else {
			kafkaPublisher.Use(events.LoggingMiddleware(e.log, e.cfg.EventsTopic))
			publisher = kafkaPublisher
			e.closers = append(e.closers, func() {
				if err := kafkaPublisher.Close(); err != nil {
					e.log.Warn("Failed to close event publisher", "error", err)
				}
			})
		}
	}

	e.api = client.New(e.cfg.APIBaseURL, e.store, e.log.Component("client"),
		client.WithTimeout(e.cfg.RequestTimeout),
		client.WithPublisher(publisher),
		client.WithProfile(e.cfg.SessionProfile),
		client.WithFallbackObserver(e.observe),
	)
	return nil
}

func (e *cliEnv) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func (e *cliEnv) observe(accessor string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sampled = append(e.sampled, accessor)
	if apperrors.IsLoggedOut(err) {
		e.loggedOut = true
	}
}

// finish reports how the data just printed was obtained. A read that found
// the session ended exits with ExitLoggedOut after the sample output.
func (e *cliEnv) finish() error {
	e.mu.Lock()
	sampled, loggedOut := len(e.sampled) > 0, e.loggedOut
	e.mu.Unlock()

	if loggedOut {
		return e.sessionEnded()
	}
	if sampled {
		fmt.Fprintln(e.errOut, "note: the hotel API could not be reached, showing sample data")
	}
	return nil
}

func (e *cliEnv) sessionEnded() error {
	fmt.Fprintln(e.errOut, "note: showing sample data")
	return cli.Exit(loginHint, ExitLoggedOut)
}

// failure turns an SDK error into an exit error, listing field errors one
// per line.
func (e *cliEnv) failure(err error) error {
	if apperrors.IsLoggedOut(err) {
		return cli.Exit(loginHint, ExitLoggedOut)
	}
	appErr := apperrors.AsAppError(err)
	msg := appErr.Message
	for _, field := range sortedKeys(appErr.Details) {
		msg += fmt.Sprintf("\n  %s: %v", field, flatten(appErr.Details[field]))
	}
	return cli.Exit(msg, 1)
}
