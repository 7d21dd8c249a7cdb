package main

import (
	"context"
	"fmt"

	"github.com/adminsys/backoffice/internal/bootstrap"
	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/handler"
	"github.com/adminsys/backoffice/internal/pkg/logger"
	"github.com/spf13/cobra"
)

type session struct {
	cfg    *config.Config
	stores *bootstrap.Stores
	svcs   handler.Services
}

func (s *session) close(ctx context.Context) {
	s.svcs.Audit.Close()
	_ = s.stores.Close(ctx)
}

func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level, "text")
	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, stores: stores, svcs: bootstrap.NewServices(cfg, stores, log)}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Back-office maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "path to config file")
	root.AddCommand(newResetAdminPasswordCmd(), newCleanupLogsCmd(), newSeedCmd())
	return root
}

func newResetAdminPasswordCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "reset-admin-password",
		Short: "Set a new password on an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			user, err := s.svcs.Auth.ResetAdminPassword(ctx, username, password)
			if err != nil {
				return fmt.Errorf("reset password: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

func newCleanupLogsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup-logs",
		Short: "Delete audit entries older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			if !cmd.Flags().Changed("days") {
				days = s.cfg.Audit.RetentionDays
			}
			deleted, err := s.svcs.Logs.Cleanup(ctx, days)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d log entries older than %d days\n", deleted, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "retention window in days (default: audit.retention_days)")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin and default notices when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, cmd)
			if err != nil {
				return err
			}
			defer s.close(ctx)

			if err := bootstrap.Seed(ctx, s.cfg, s.svcs, s.stores.Users, logger.New(cmd.ErrOrStderr(), "info", "text")); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
			return nil
		},
	}
}
