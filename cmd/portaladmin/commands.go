package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	database "portalku_backend/internals/databases"
	"portalku_backend/internals/helpers/storage"
	routes "portalku_backend/internals/route"
	"portalku_backend/internals/seeds"
)

// env dibuka per command, supaya `--help` tidak butuh DB.
type env struct {
	DB    *gorm.DB
	Deps  *routes.Deps
	close func()
}

type opener func(ctx context.Context, needStore bool) (*env, error)

func openFromEnv(ctx context.Context, needStore bool) (*env, error) {
	db, err := database.Open()
	if err != nil {
		return nil, err
	}
	var store storage.ObjectStore = storage.NewMemoryStore()
	if needStore {
		if store, err = storage.NewFromEnv(ctx); err != nil {
			return nil, errors.Wrap(err, "storage")
		}
	}
	deps := routes.NewDeps(db, store)
	return &env{DB: db, Deps: deps, close: func() {
		deps.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}}, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "portaladmin",
		Short:        "Maintenance commands for the portal backend",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(open), newReapCmd(open), newSetRoleCmd(open), newSeedCmd(open))
	return root
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.close()
			if err := database.Migrate(e.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ migrate selesai")
			return nil
		},
	}
}

func newReapCmd(open opener) *cobra.Command {
	var dryRun bool
	var grace time.Duration
	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Run one orphan object sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.close()

			cfg := storage.ReaperConfigFromEnv()
			if cmd.Flags().Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if cmd.Flags().Changed("grace") {
				cfg.Grace = grace
			}
			stats, err := e.Deps.Reaper(cfg).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d referenced=%d removed=%d failed=%d dry_run=%v\n",
				stats.Scanned, stats.Referenced, stats.Removed, stats.Failed, cfg.DryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only report what would be removed")
	cmd.Flags().DurationVar(&grace, "grace", 0, "minimum age of a staged object before it may be removed")
	return cmd
}

func newSetRoleCmd(open opener) *cobra.Command {
	var userID, role string
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change a user's profile role",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return errors.Errorf("invalid --user %q", userID)
			}
			e, err := open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.Deps.Profiles.SetRole(cmd.Context(), id, role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "role %s -> %s\n", id, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (uuid)")
	cmd.Flags().StringVar(&role, "role", "", "teacher or student")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newSeedCmd(open opener) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users, modules and videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := seeds.LoadFile(file)
			if err != nil {
				return err
			}
			e, err := open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.close()
			st, err := seeds.Run(cmd.Context(), seeds.Services{
				Auth:    e.Deps.Auth,
				Modules: e.Deps.Modules,
				Videos:  e.Deps.Videos,
			}, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d modules=%d videos=%d skipped=%d\n", st.Users, st.Modules, st.Videos, st.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", seeds.DefaultFile, "seed json file")
	return cmd
}
