package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fittrack-bot/internal/api"
	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/planner"
	"fittrack-bot/internal/session"
	"fittrack-bot/internal/store"
	"fittrack-bot/pkg/logger"
)

// app holds the flags shared by every subcommand and the services built
// from them in PersistentPreRunE.
type app struct {
	apiURL   string
	token    string
	timezone string
	timeout  time.Duration
	verbose  bool

	logger  *logger.Logger
	client  *api.Client
	dash    *dashboard.Dashboard
	planner *planner.Planner
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fittrack",
		Short: "fittrack reads and edits your FitTrack data from the terminal",
		Long: `fittrack is a companion to the FitTrack Telegram bot.

It talks to the same backend API. Sign in with "fittrack login", then export
the printed token as FITTRACK_TOKEN for the other commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api", envOr("FITTRACK_API", "http://localhost:5001/api"), "Backend API base URL")
	root.PersistentFlags().StringVar(&a.token, "token", os.Getenv("FITTRACK_TOKEN"), "Bearer token from \"fittrack login\"")
	root.PersistentFlags().StringVar(&a.timezone, "tz", envOr("FITTRACK_TZ", "Local"), "IANA time zone deciding which log is today")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "Backend request timeout")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log backend calls to stdout")

	root.AddCommand(
		newLoginCmd(a),
		newTodayCmd(a),
		newLogCmd(a),
		newExportCmd(a),
		newTrendsCmd(a),
		newGoalsCmd(a),
		newSuggestCmd(a),
		newPantryCmd(a),
		newPlanCmd(a),
	)
	return root
}

func (a *app) setup() error {
	loc, err := time.LoadLocation(a.timezone)
	if err != nil {
		return fmt.Errorf("invalid --tz %q: %w", a.timezone, err)
	}

	if a.verbose {
		a.logger = logger.NewDevelopment()
	} else {
		a.logger = logger.NewNop()
	}

	a.client = api.NewClient(a.apiURL, &http.Client{Timeout: a.timeout}, a.logger.Named("api"), nil)

	cache := store.NewCache(16, 5*time.Minute, a.logger.Named("cache"))
	a.dash = dashboard.New(a.client, store.NewLogStore(cache), store.NewGoalStore(cache), loc, a.logger.Named("dashboard"))
	a.planner = planner.New(a.client, a.logger.Named("planner"))
	return nil
}

// authed returns a context carrying the token, as the bot does per update.
func (a *app) authed(cmd *cobra.Command) (context.Context, error) {
	if a.token == "" {
		return nil, fmt.Errorf("not signed in: run \"fittrack login\" and set FITTRACK_TOKEN or --token")
	}
	return session.NewContext(cmd.Context(), &models.Session{Token: a.token}), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
