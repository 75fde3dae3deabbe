package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"careagenda/internal/agenda"
	"careagenda/internal/availability"
	"careagenda/internal/calendar"
	"careagenda/internal/config"
	"careagenda/internal/directory"
	"careagenda/internal/draft"
	"careagenda/internal/extract"
	"careagenda/internal/logging"
	"careagenda/internal/match"
	"careagenda/internal/metrics"
	"careagenda/internal/server"
	"careagenda/internal/temporal"
)

const appVersion = "0.1.0"

var (
	green = color.New(color.FgGreen).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// NewRootCommand builds the careagenda CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "careagenda",
		Short: "Agenda event resolution and scheduling conflict engine",
		Long: fmt.Sprintf(`%s

Turns dictated French appointment requests into structured calendar drafts,
resolves participant names against the contact directory, searches for free
slots, and commits confirmed events to the calendar.`, bold("careagenda "+appVersion)),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP boundary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := flagOverrides(cmd, cfg); err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
	cmd.Flags().String("host", "", "Listen host (overrides config)")
	cmd.Flags().Int("port", 0, "Listen port (overrides config)")
	cmd.Flags().Bool("debug", false, "Debug mode")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(*cobra.Command, []string) {
			fmt.Println("careagenda " + appVersion)
		},
	}
}

func flagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("debug") {
		cfg.Server.Debug, _ = cmd.Flags().GetBool("debug")
	}
	return cfg.Validate()
}

// runServer wires the full engine and blocks until SIGINT/SIGTERM.
func runServer(cfg *config.Config) error {
	logging.Configure(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	logger := logging.NewComponentLogger("careagenda")

	extractor := extract.NewClient(extract.ClientConfig{
		BaseURL: cfg.Services.ExtractionURL,
		Timeout: cfg.Services.CallTimeout,
	}, logging.NewComponentLogger("extract"))

	directoryClient := directory.NewClient(directory.ClientConfig{
		DirectoryURL: cfg.Services.DirectoryURL,
		ContactsURL:  cfg.Services.ContactsURL,
		Timeout:      cfg.Services.CallTimeout,
	}, logging.NewComponentLogger("directory"))

	normalizer := temporal.NewNormalizer(cfg.Temporal.DefaultDurationMinutes, cfg.Temporal.Locale)

	builder := draft.NewBuilder(extractor, directoryClient, normalizer, match.Config{
		Threshold:       cfg.Matching.Threshold,
		AmbiguityMargin: cfg.Matching.AmbiguityMargin,
		TopN:            cfg.Matching.TopN,
	}, logging.NewComponentLogger("draft"))

	availabilityClient := availability.NewClient(availability.ClientConfig{
		BaseURL: cfg.Services.AvailabilityURL,
		Timeout: cfg.Services.CallTimeout,
	}, logging.NewComponentLogger("availability"))
	resolver := availability.NewResolver(availabilityClient, cfg.Availability.CallTimeout, logging.NewComponentLogger("availability"))

	locator := calendar.NewLocator(calendar.LocatorConfig{
		BaseURL: cfg.Services.CalendarURL,
		Timeout: cfg.Services.CallTimeout,
	}, logging.NewComponentLogger("calendar"))
	gateway := calendar.NewGateway(calendar.GatewayConfig{
		BaseURL: cfg.Services.CalendarURL,
		Timeout: cfg.Services.CallTimeout,
	}, logging.NewComponentLogger("calendar"))

	m := metrics.New()
	service := agenda.NewService(builder, resolver, locator, gateway, directoryClient, m, cfg.Availability.MaxAttempts, logging.NewComponentLogger("agenda"))
	srv := server.New(cfg.Server, service, m, logging.NewComponentLogger("server"))

	fmt.Printf("%s %s\n", green("careagenda"), appVersion)
	fmt.Printf("listening on %s\n", cyan(fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("signal received, draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
