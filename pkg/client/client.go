package client

import (
	"hoteldesk/pkg/events"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/session"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

// FallbackObserver is told whenever a read served sample data instead of the
// API response.
type FallbackObserver func(accessor string, err error)

type options struct {
	httpClient  *http.Client
	onLoggedOut func(cause error)
	publisher   events.Publisher
	profile     string
	now         func() time.Time
	onFallback  FallbackObserver
}

type Option func(*options)

func buildOptions(opts []Option) *options {
	o := &options{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		publisher:  events.NopPublisher{},
		profile:    "default",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds every HTTP round trip.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.httpClient = &http.Client{Timeout: d, Transport: o.httpClient.Transport}
	}
}

// WithLoggedOutHandler is called once when the session ends: with the cause
// after a failed refresh, or with nil after an explicit logout. It runs after
// the gateway has released its session lock and may call back into it.
func WithLoggedOutHandler(fn func(cause error)) Option {
	return func(o *options) { o.onLoggedOut = fn }
}

func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithProfile names the session in audit events.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithFallbackObserver(fn FallbackObserver) Option {
	return func(o *options) { o.onFallback = fn }
}

// Client groups the accessors over one shared gateway.
type Client struct {
	Gateway      *Gateway
	Auth         *AuthClient
	Reservations *ReservationClient
	Rooms        *RoomClient
	Billing      *BillingClient
	Analytics    *AnalyticsClient
	Dashboard    *DashboardClient
}

func New(baseURL string, store session.Store, log *logger.Logger, opts ...Option) *Client {
	o := buildOptions(opts)
	gw := newGateway(baseURL, store, log, o)

	base := func(name string) accessor {
		return accessor{
			gw:         gw,
			log:        log.Component(name),
			now:        o.now,
			onFallback: o.onFallback,
		}
	}

	reservations := &ReservationClient{accessor: base("reservations")}
	analytics := &AnalyticsClient{accessor: base("analytics")}

	return &Client{
		Gateway:      gw,
		Auth:         &AuthClient{gw: gw, log: log.Component("auth")},
		Reservations: reservations,
		Rooms:        &RoomClient{accessor: base("rooms")},
		Billing:      &BillingClient{accessor: base("billing")},
		Analytics:    analytics,
		Dashboard: &DashboardClient{
			accessor:     base("dashboard"),
			analytics:    analytics,
			reservations: reservations,
		},
	}
}

// accessor carries what every read accessor shares.
type accessor struct {
	gw         *Gateway
	log        *logger.Logger
	now        func() time.Time
	onFallback FallbackObserver
}

func (a accessor) fallback(name string, err error) {
	a.log.Warn("Serving sample data", "accessor", name, "error", err)
	if a.onFallback != nil {
		a.onFallback(name, err)
	}
}
