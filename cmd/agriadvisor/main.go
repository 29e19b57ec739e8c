// Agri-Advisor terminal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ashureev/agri-advisor/internal/app"
	"github.com/ashureev/agri-advisor/internal/authflow"
	"github.com/ashureev/agri-advisor/internal/config"
	"github.com/ashureev/agri-advisor/internal/gateway"
	"github.com/ashureev/agri-advisor/internal/realtime"
	"github.com/ashureev/agri-advisor/internal/session"
	"github.com/ashureev/agri-advisor/internal/tui"
	"github.com/ashureev/agri-advisor/internal/views"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	logFile, err := os.OpenFile(logPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		logFile = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logPath keeps slog output away from the terminal the TUI owns.
func logPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./agri-advisor.log"
	}
	return home + "/.agri-advisor/client.log"
}

// env bundles the dependencies every command needs.
type env struct {
	cfg     *config.Config
	store   session.Store
	gw      *gateway.Client
	channel *realtime.Manager
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := config.ResolveBaseURL(ctx, cfg); err != nil {
		return nil, fmt.Errorf("resolve backend URL: %w", err)
	}
	slog.Info("Backend resolved", "base_url", cfg.BaseURL, "dev", cfg.IsDevelopment())

	store, err := session.NewSQLite(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("state store health check: %w", err)
	}

	channel, err := realtime.NewManager(cfg.BaseURL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("configure chat channel: %w", err)
	}

	return &env{
		cfg:     cfg,
		store:   store,
		gw:      gateway.New(cfg.BaseURL, store),
		channel: channel,
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		slog.Error("Failed to close state store", "error", err)
	}
}

func rootCmd() *cobra.Command {
	var deepView string
	var deepUser int64

	root := &cobra.Command{
		Use:           "agriadvisor",
		Short:         "Terminal client for the Sarawak agricultural advisory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), deepView, deepUser)
		},
	}
	root.Flags().StringVar(&deepView, "view", "", "view to open on start (ai-diagnosis, posts, chat, ...)")
	root.Flags().Int64Var(&deepUser, "user-id", 0, "open the chat view with this conversation partner")

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the advisory dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), deepView, deepUser)
		},
	}
	dashboard.Flags().StringVar(&deepView, "view", "", "view to open on start")
	dashboard.Flags().Int64Var(&deepUser, "user-id", 0, "open the chat view with this conversation partner")

	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if err := authflow.Login(cmd.Context(), e.gw, e.store); err != nil {
				return err
			}
			fmt.Println("Logged in. Run `agriadvisor` to open the dashboard.")
			return nil
		},
	}

	signup := &cobra.Command{
		Use:   "signup",
		Short: "Create and verify a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if err := authflow.SignUp(cmd.Context(), e.gw); err != nil {
				return err
			}
			fmt.Println("Account verified. Run `agriadvisor login` to sign in.")
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			store, err := session.NewSQLite(cfg.StatePath)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}

	root.AddCommand(dashboard, login, signup, logout)
	return root
}

func runDashboard(ctx context.Context, deepView string, deepUser int64) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	registry := app.NewRegistry()
	views.RegisterAll(registry, e.cfg)

	router := app.NewRouter(e.cfg, e.gw, e.store, e.channel, registry)

	deepParam := ""
	if deepUser != 0 {
		deepView = app.ViewChat.String()
		deepParam = strconv.FormatInt(deepUser, 10)
	}

	if err := router.Init(ctx, deepView, deepParam); err != nil {
		if errors.Is(err, app.ErrNoSession) || errors.Is(err, gateway.ErrSessionExpired) {
			return fmt.Errorf("no active session, run `agriadvisor login` first")
		}
		return fmt.Errorf("start dashboard: %w", err)
	}

	return tui.Run(router, e.store)
}
