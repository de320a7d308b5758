package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrsinham/clinicdesk/internal/clinicapi"
	"github.com/mrsinham/clinicdesk/internal/config"
	"github.com/mrsinham/clinicdesk/internal/logging"
)

// version is set at build time via -ldflags
var version = "dev"

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	configPath string
	apiURL     string
	token      string
	logFile    string

	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = strings.TrimRight(a.apiURL, "/")
	}
	if a.token != "" {
		cfg.APIToken = a.token
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.closer = closer
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

func (a *app) client() (*clinicapi.Client, error) {
	return clinicapi.New(clinicapi.Config{
		BaseURL: a.cfg.APIURL,
		Token:   a.cfg.APIToken,
		Timeout: a.cfg.HTTPTimeout,
	}, a.logger)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "clinicdesk",
		Short:         "Doctor's desk: prescriptions, appointments and patient records",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default .env)")
	flags.StringVar(&a.apiURL, "api-url", "", "Backend base URL (overrides CLINIC_API_URL)")
	flags.StringVar(&a.token, "token", "", "Bearer token (overrides CLINIC_API_TOKEN)")
	flags.StringVar(&a.logFile, "log-file", "", "Write logs to this file (overrides LOG_FILE)")

	root.AddCommand(prescribeCmd(a))
	root.AddCommand(appointmentsCmd(a))
	root.AddCommand(patientsCmd(a))
	root.AddCommand(profileCmd(a))
	root.AddCommand(sandboxCmd(a))

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
