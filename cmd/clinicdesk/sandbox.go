package main

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrsinham/clinicdesk/internal/sandbox"
)

func sandboxCmd(a *app) *cobra.Command {
	var port, databaseURL, secret string
	var extraPatients int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run the development backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.cfg.SandboxPort
			}
			if databaseURL == "" {
				databaseURL = a.cfg.SandboxDatabaseURL
			}
			if secret == "" {
				secret = a.cfg.SandboxJWTSecret
			}

			ctx := cmd.Context()
			now := time.Now()
			fixtures := sandbox.NewFixtures(now)
			if extraPatients > 0 {
				fixtures.AddPatients(extraPatients, seed, now)
			}
			opts := sandbox.Options{
				Fixtures: fixtures,
				Logger:   a.logger,
			}
			if secret != "" {
				opts.JWTSecret = []byte(secret)
			}

			if databaseURL != "" {
				pool, err := sandbox.NewPool(ctx, databaseURL, 10, 2)
				if err != nil {
					return err
				}
				defer pool.Close()

				store := sandbox.NewPGStore(pool)
				if err := store.EnsureSchema(ctx); err != nil {
					return err
				}
				opts.Store = store
				opts.StoreName = "postgres"
				opts.Ping = pool.Ping
				a.logger.Info().Msg("sandbox using postgres store")
			}

			addr := net.JoinHostPort("", port)
			a.logger.Info().Str("addr", addr).Bool("jwt", secret != "").Msg("sandbox starting")
			return sandbox.New(opts).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8000", "Port to listen on (overrides SANDBOX_PORT)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL; the in-memory store is used when empty")
	cmd.Flags().StringVar(&secret, "jwt-secret", "", "HS256 secret; bearer tokens are required when set")
	cmd.Flags().IntVar(&extraPatients, "patients", 0, "Generate this many extra patients")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for the generated patients")

	cmd.AddCommand(sandboxTokenCmd(a))
	return cmd
}

func sandboxTokenCmd(a *app) *cobra.Command {
	var subject, secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token the sandbox accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = a.cfg.SandboxJWTSecret
			}
			if secret == "" {
				return errors.New("no secret: pass --jwt-secret or set SANDBOX_JWT_SECRET")
			}
			token, err := sandbox.MintToken([]byte(secret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "doctor", "Token subject")
	cmd.Flags().StringVar(&secret, "jwt-secret", "", "HS256 secret (overrides SANDBOX_JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime; 0 never expires")
	return cmd
}
