package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HammerMeetNail/reelcanon/internal/config"
	"github.com/HammerMeetNail/reelcanon/internal/database"
	"github.com/HammerMeetNail/reelcanon/internal/seed"
	"github.com/HammerMeetNail/reelcanon/internal/services"
)

// migrator is the subset of database.Migrator the commands drive.
type migrator interface {
	Up() error
	Down() error
	Drop() error
	Version() (uint, bool, error)
	Close() error
}

// env opens the backing stores lazily so that each command only connects to
// what it needs. Tests replace the open functions.
type env struct {
	migrationsPath string
	openMigrator   func(cfg *config.Config, path string) (migrator, error)
	openSeeder     func(cfg *config.Config) (*seed.Seeder, func(), error)
}

func defaultEnv() *env {
	return &env{
		migrationsPath: database.DefaultMigrationsDir,
		openMigrator: func(cfg *config.Config, path string) (migrator, error) {
			return database.NewMigrator(cfg.Database.DSN(), path)
		},
		openSeeder: openSeeder,
	}
}

func openSeeder(cfg *config.Config) (*seed.Seeder, func(), error) {
	db, err := database.NewPostgresDB(context.Background(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	adapter := services.NewPoolAdapter(db.Pool)
	// Seeding runs without Redis; the leaderboard cache expires on its own.
	leaderboard := services.NewLeaderboardService(adapter, nil)
	seeder := seed.NewSeeder(
		adapter,
		services.NewUserService(adapter, services.NewFriendshipService(adapter), leaderboard),
		services.NewMovieService(adapter, leaderboard),
		services.NewReelProgressService(adapter, leaderboard),
		services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil),
	)
	return seeder, db.Close, nil
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithEnv(defaultEnv())
}

func newRootCmdWithEnv(e *env) *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "reelctl",
		Short:         "Operate the reelcanon database: migrations, seed data and resets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&e.migrationsPath, "migrations", e.migrationsPath, "path to the migrations directory")

	withMigrator := func(fn func(m migrator) error) error {
		m, err := e.openMigrator(cfg, e.migrationsPath)
		if err != nil {
			return err
		}
		defer func() { _ = m.Close() }()
		return fn(m)
	}

	withSeeder := func(fn func(s *seed.Seeder) error) error {
		s, closeFn, err := e.openSeeder(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(s)
	}

	// --- Migrations ---
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "migrations rolled back")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop every table, including the migrations table",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m migrator) error {
					if err := m.Drop(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "schema dropped")
					return nil
				})
			},
		},
	)

	// --- Seeding ---
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo movies and users",
	}

	var moviesFile string
	seedMoviesCmd := &cobra.Command{
		Use:   "movies",
		Short: "Create movies from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(moviesFile)
			if err != nil {
				return fmt.Errorf("opening movies file: %w", err)
			}
			defer f.Close()

			return withSeeder(func(s *seed.Seeder) error {
				res, err := s.SeedMovies(context.Background(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "movies: %d created, %d skipped, %d failed\n", res.Created, res.Skipped, res.Failed)
				return nil
			})
		},
	}
	seedMoviesCmd.Flags().StringVar(&moviesFile, "file", "movies.json", "JSON array of movies")

	var opts seed.UsersOptions
	seedUsersCmd := &cobra.Command{
		Use:   "users",
		Short: "Create users with random reel progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			return withSeeder(func(s *seed.Seeder) error {
				res, err := s.SeedUsers(context.Background(), opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "users: %d created, %d skipped, %d movies logged\n", res.Users, res.Skipped, res.Progress)
				return nil
			})
		},
	}
	seedUsersCmd.Flags().IntVar(&opts.Count, "count", 6, "number of regular users")
	seedUsersCmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "", "also create an admin with this email")
	seedUsersCmd.Flags().StringVar(&opts.Password, "password", seed.DefaultPassword, "password for every seeded user")

	seedCmd.AddCommand(seedMoviesCmd, seedUsersCmd)

	// --- Reset ---
	var confirm bool
	dropCmd := &cobra.Command{
		Use:   "drop",
		Short: "Delete all rows from every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.IsProduction() && !confirm {
				return fmt.Errorf("refusing to truncate a production database without --yes")
			}
			return withSeeder(func(s *seed.Seeder) error {
				if err := s.Truncate(context.Background()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all tables truncated")
				return nil
			})
		},
	}
	dropCmd.Flags().BoolVar(&confirm, "yes", false, "confirm truncating a production database")

	rootCmd.AddCommand(migrateCmd, seedCmd, dropCmd)
	return rootCmd
}
