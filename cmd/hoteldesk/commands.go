package main

import (
	"fmt"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/session"
	"time"

	"github.com/urfave/cli/v2"
)

func newApp(env *cliEnv) *cli.App {
	return &cli.App{
		Name:      ServiceName,
		Usage:     "front desk client for the hotel management API",
		Writer:    env.out,
		ErrWriter: env.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "API base URL (overrides API_BASE_URL)"},
			&cli.StringFlag{Name: "profile", Usage: "session profile (overrides SESSION_PROFILE)"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at LOG_LEVEL instead of errors only"},
		},
		Before: env.connect,
		After: func(*cli.Context) error {
			env.close()
			return nil
		},
		Commands: []*cli.Command{
			loginCommand(env),
			logoutCommand(env),
			whoamiCommand(env),
			statusCommand(env),
			registerCommand(env),
			roomsCommand(env),
			reservationsCommand(env),
			invoicesCommand(env),
			paymentsCommand(env),
			statsCommand(env),
		},
	}
}

func loginCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"HOTELDESK_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			result, err := env.api.Auth.Login(c.Context, c.String("email"), c.String("password"))
			if err != nil {
				return env.failure(err)
			}
			if c.Bool("json") {
				return writeJSON(env.out, result.User)
			}
			if result.User != nil {
				fmt.Fprintf(env.out, "Logged in as %s <%s> (%s)\n", result.User.FullName(), result.User.Email, result.User.Role)
				return nil
			}
			fmt.Fprintf(env.out, "Logged in as %s\n", c.String("email"))
			return nil
		},
	}
}

func logoutCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored session",
		Action: func(c *cli.Context) error {
			if err := env.api.Auth.Logout(c.Context); err != nil {
				return env.failure(err)
			}
			fmt.Fprintln(env.out, "Logged out.")
			return nil
		},
	}
}

func whoamiCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in user, refreshing the session if needed",
		Action: func(c *cli.Context) error {
			user, err := env.api.Auth.CheckSession(c.Context)
			if err != nil {
				return env.failure(err)
			}
			if c.Bool("json") {
				return writeJSON(env.out, user)
			}
			return writeUser(env.out, user)
		},
	}
}

type sessionStatus struct {
	LoggedIn   bool      `json:"logged_in"`
	Profile    string    `json:"profile"`
	Backend    string    `json:"backend"`
	UserID     string    `json:"user_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Role       string    `json:"role,omitempty"`
	ExpiresAt  time.Time `json:"access_expires_at"`
	Expired    bool      `json:"access_expired"`
	HasRefresh bool      `json:"has_refresh_token"`
}

func statusCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show the stored session without calling the API",
		Action: func(c *cli.Context) error {
			tokens, err := env.api.Gateway.Session(c.Context)
			if err != nil {
				return env.failure(apperrors.Internal("failed to read session", err))
			}

			status := sessionStatus{
				LoggedIn:   tokens.Access != "",
				Profile:    env.cfg.SessionProfile,
				Backend:    env.cfg.SessionBackend,
				HasRefresh: tokens.Refresh != "",
			}
			if tokens.Access != "" {
				if claims, err := session.InspectAccessToken(tokens.Access); err == nil {
					status.UserID = claims.UserID
					status.Email = claims.Email
					status.Role = claims.Role
					status.ExpiresAt = claims.ExpiresAt
					status.Expired = claims.Expired(time.Now())
				}
			}

			if c.Bool("json") {
				return writeJSON(env.out, status)
			}
			if !status.LoggedIn {
				fmt.Fprintf(env.out, "Not logged in (profile %s, %s store).\n", status.Profile, status.Backend)
				return nil
			}
			rows := [][]string{
				{"profile", status.Profile},
				{"backend", status.Backend},
				{"user_id", status.UserID},
				{"email", status.Email},
				{"role", status.Role},
				{"refresh_token", fmt.Sprint(status.HasRefresh)},
			}
			if !status.ExpiresAt.IsZero() {
				expiry := status.ExpiresAt.Local().Format(time.RFC3339)
				if status.Expired {
					expiry += " (expired, refreshed on next call)"
				}
				rows = append(rows, []string{"access_expires", expiry})
			}
			return writeTable(env.out, []string{"field", "value"}, rows)
		},
	}
}

func registerCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and sign in with it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"HOTELDESK_PASSWORD"}, Required: true},
			&cli.StringFlag{Name: "password-confirm", Usage: "defaults to --password"},
			&cli.StringFlag{Name: "first-name", Required: true},
			&cli.StringFlag{Name: "last-name", Required: true},
			&cli.StringFlag{Name: "role", Usage: "admin, manager, receptionist, housekeeping or guest"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "address"},
		},
		Action: func(c *cli.Context) error {
			confirm := c.String("password-confirm")
			if confirm == "" {
				confirm = c.String("password")
			}
			result, err := env.api.Auth.Register(c.Context, model.Registration{
				Email:           c.String("email"),
				Password:        c.String("password"),
				PasswordConfirm: confirm,
				FirstName:       c.String("first-name"),
				LastName:        c.String("last-name"),
				Role:            model.Role(c.String("role")),
				Phone:           c.String("phone"),
				Address:         c.String("address"),
			})
			if err != nil {
				return env.failure(err)
			}
			if c.Bool("json") {
				return writeJSON(env.out, result.User)
			}
			fmt.Fprintf(env.out, "Registered %s\n", c.String("email"))
			return nil
		},
	}
}

func filterFlags(dateUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "status, or all"},
		&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: dateUsage},
		&cli.StringFlag{Name: "search", Aliases: []string{"q"}},
	}
}

func roomsCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "rooms",
		Usage: "list rooms",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "available, occupied, maintenance, cleaning, reserved or all"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "room type substring, or all"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}},
		},
		Action: func(c *cli.Context) error {
			rooms, err := env.api.Rooms.List(c.Context, model.RoomFilter{
				Status:   c.String("status"),
				RoomType: c.String("type"),
				Search:   c.String("search"),
			})
			if err != nil {
				return env.failure(err)
			}
			if err := render(c, env, rooms, []string{"room", "floor", "type", "status", "price", "features"}, roomRows(rooms)); err != nil {
				return err
			}
			return env.finish()
		},
	}
}

func reservationsCommand(env *cliEnv) *cli.Command {
	flags := filterFlags("today, tomorrow, this_week, next_week, this_month or all")
	flags = append(flags,
		&cli.BoolFlag{Name: "arrivals", Usage: "only guests checking in today"},
		&cli.BoolFlag{Name: "recent", Usage: "the most recent bookings"},
	)
	return &cli.Command{
		Name:  "reservations",
		Usage: "list reservations",
		Flags: flags,
		Action: func(c *cli.Context) error {
			var (
				reservations []model.Reservation
				err          error
			)
			switch {
			case c.Bool("arrivals"):
				reservations, err = env.api.Reservations.TodayArrivals(c.Context)
			case c.Bool("recent"):
				reservations, err = env.api.Reservations.Recent(c.Context)
			default:
				reservations, err = env.api.Reservations.List(c.Context, model.ReservationFilter{
					Status:     c.String("status"),
					DateFilter: c.String("date"),
					Search:     c.String("search"),
				})
			}
			if err != nil {
				return env.failure(err)
			}
			headers := []string{"number", "guest", "room", "check_in", "check_out", "status", "total"}
			if err := render(c, env, reservations, headers, reservationRows(reservations)); err != nil {
				return err
			}
			return env.finish()
		},
	}
}

func invoicesCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "invoices",
		Usage: "list invoices",
		Flags: filterFlags("today, this_week, this_month, last_month, this_year or all"),
		Action: func(c *cli.Context) error {
			invoices, err := env.api.Billing.Invoices(c.Context, model.InvoiceFilter{
				Status:     c.String("status"),
				DateFilter: c.String("date"),
				Search:     c.String("search"),
			})
			if err != nil {
				return env.failure(err)
			}
			headers := []string{"number", "guest", "reservation", "issued", "due", "status", "total"}
			if err := render(c, env, invoices, headers, invoiceRows(invoices)); err != nil {
				return err
			}
			return env.finish()
		},
	}
}

func paymentsCommand(env *cliEnv) *cli.Command {
	return &cli.Command{
		Name:  "payments",
		Usage: "list payments",
		Flags: filterFlags("today, this_week, this_month, last_month, this_year or all"),
		Action: func(c *cli.Context) error {
			payments, err := env.api.Billing.Payments(c.Context, model.PaymentFilter{
				Status:     c.String("status"),
				DateFilter: c.String("date"),
				Search:     c.String("search"),
			})
			if err != nil {
				return env.failure(err)
			}
			headers := []string{"transaction", "guest", "invoice", "method", "date", "status", "amount"}
			if err := render(c, env, payments, headers, paymentRows(payments)); err != nil {
				return err
			}
			return env.finish()
		},
	}
}

func statsCommand(env *cliEnv) *cli.Command {
	rangeFlags := []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "start date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "to", Usage: "end date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "group-by", Usage: "day, week or month"},
	}
	analyticsRange := func(c *cli.Context) model.AnalyticsRange {
		return model.AnalyticsRange{StartDate: c.String("from"), EndDate: c.String("to"), GroupBy: c.String("group-by")}
	}

	return &cli.Command{
		Name:  "stats",
		Usage: "analytics and the dashboard summary",
		Subcommands: []*cli.Command{
			{
				Name:  "occupancy",
				Flags: rangeFlags,
				Action: func(c *cli.Context) error {
					stats, err := env.api.Analytics.Occupancy(c.Context, analyticsRange(c))
					if err != nil {
						return env.failure(err)
					}
					rows := make([][]string, 0, len(stats.TimeSeries))
					for _, p := range stats.TimeSeries {
						rows = append(rows, []string{p.Date, money(p.OccupancyRate), money(p.OccupiedRooms)})
					}
					if err := render(c, env, stats, []string{"date", "rate", "occupied"}, rows); err != nil {
						return err
					}
					return env.finish()
				},
			},
			{
				Name:  "revenue",
				Flags: rangeFlags,
				Action: func(c *cli.Context) error {
					stats, err := env.api.Analytics.Revenue(c.Context, analyticsRange(c))
					if err != nil {
						return env.failure(err)
					}
					rows := make([][]string, 0, len(stats.TimeSeries)+1)
					for _, p := range stats.TimeSeries {
						rows = append(rows, []string{p.Date, money(p.Revenue)})
					}
					rows = append(rows, []string{"total", money(stats.TotalRevenue)})
					if err := render(c, env, stats, []string{"date", "revenue"}, rows); err != nil {
						return err
					}
					return env.finish()
				},
			},
			{
				Name:  "guests",
				Flags: rangeFlags,
				Action: func(c *cli.Context) error {
					stats, err := env.api.Analytics.Guests(c.Context, analyticsRange(c))
					if err != nil {
						return env.failure(err)
					}
					rows := make([][]string, 0, len(stats.TimeSeries))
					for _, p := range stats.TimeSeries {
						rows = append(rows, []string{p.Date, fmt.Sprint(p.UniqueGuests), money(p.AvgPartySize), money(p.AvgStayLength)})
					}
					if err := render(c, env, stats, []string{"month", "guests", "party_size", "stay_length"}, rows); err != nil {
						return err
					}
					return env.finish()
				},
			},
			{
				Name: "dashboard",
				Action: func(c *cli.Context) error {
					stats, err := env.api.Dashboard.Stats(c.Context)
					if err != nil {
						return env.failure(err)
					}
					if c.Bool("json") {
						if err := writeJSON(env.out, stats); err != nil {
							return err
						}
					} else if err := writeDashboard(env.out, stats); err != nil {
						return err
					}
					return env.finish()
				},
			},
		},
	}
}

// render prints v as JSON when --json is set and as a table otherwise.
func render(c *cli.Context, env *cliEnv, v any, headers []string, rows [][]string) error {
	if c.Bool("json") {
		return writeJSON(env.out, v)
	}
	return writeTable(env.out, headers, rows)
}
