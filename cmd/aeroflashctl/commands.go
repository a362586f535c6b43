package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/internal/repository"
	"github.com/Winan03/AeroFlash-app/internal/service"
	"github.com/Winan03/AeroFlash-app/pkg/config"
	"github.com/Winan03/AeroFlash-app/pkg/docstore"
	"github.com/Winan03/AeroFlash-app/pkg/logger"
	pkgredis "github.com/Winan03/AeroFlash-app/pkg/redis"
)

const seedConcurrency = 8

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aeroflashctl",
		Short:         "Operator tooling for the AeroFlash booking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newHashPasswordCmd(), newRebuildInventoryCmd())
	return rootCmd
}

// --- Admin credential ---

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash to put in ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default 10)")
	return cmd
}

// --- Seat inventory ---

func newRebuildInventoryCmd() *cobra.Command {
	var (
		timeout time.Duration
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "rebuild-inventory",
		Short: "Reseed the Redis seat inventory from the stored flights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(&logger.Config{
				Level:       "info",
				ServiceName: "aeroflashctl",
				Development: cfg.IsDevelopment(),
			}); err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			store, err := docstore.New(ctx, &docstore.Config{
				Backend:         cfg.Firebase.Backend,
				DatabaseURL:     cfg.Firebase.DatabaseURL,
				ProjectID:       cfg.Firebase.ProjectID,
				CredentialsFile: cfg.Firebase.CredentialsFile,
				CredentialsJSON: cfg.Firebase.CredentialsJSON,
			})
			if err != nil {
				return fmt.Errorf("document store: %w", err)
			}
			redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
				Host:          cfg.Redis.Host,
				Port:          cfg.Redis.Port,
				Password:      cfg.Redis.Password,
				DB:            cfg.Redis.DB,
				PoolSize:      cfg.Redis.PoolSize,
				DialTimeout:   cfg.Redis.DialTimeout,
				ReadTimeout:   cfg.Redis.ReadTimeout,
				WriteTimeout:  cfg.Redis.WriteTimeout,
				MaxRetries:    3,
				RetryInterval: time.Second,
			})
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			defer redisClient.Close()

			flights := repository.NewDocstoreFlightRepository(store)
			inventory := repository.NewRedisSeatInventory(redisClient)
			if dryRun {
				n, err := checkInventory(ctx, flights, inventory, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d flights out of sync\n", n)
				return nil
			}

			n, err := rebuildInventory(ctx, flights, inventory)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d flights\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report flights whose inventory differs from the store without reseeding")
	return cmd
}

// seatSeeder is the part of SeatInventory the rebuild uses
type seatSeeder interface {
	Seed(ctx context.Context, flightID string, available, occupied []string, replace bool) error
}

// rebuildInventory replaces every flight's fast-path seats with the stored
// collections and returns the number of flights seeded
func rebuildInventory(ctx context.Context, flights repository.FlightRepository, inventory seatSeeder) (int, error) {
	all, err := flights.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list flights: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(seedConcurrency)
	seeded := 0
	for _, f := range all {
		if strings.TrimSpace(f.ID) == "" {
			continue
		}
		seeded++
		g.Go(func() error {
			if err := inventory.Seed(gctx, f.ID, f.AsientosDisponibles, f.AsientosOcupados, true); err != nil {
				return fmt.Errorf("flight %s: %w", f.ID, err)
			}
			logger.Get().Debug("seeded seat inventory", zap.String("flight_id", f.ID))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return seeded, nil
}

// seatSnapshotter reads the fast-path state of a flight
type seatSnapshotter interface {
	Snapshot(ctx context.Context, flightID string) (map[string]string, error)
}

// checkInventory prints the seats whose inventory state disagrees with the
// store and returns the number of flights with differences. Flights that were
// never seeded are reported but not counted, bookings seed them lazily.
func checkInventory(ctx context.Context, flights repository.FlightRepository, inventory seatSnapshotter, out io.Writer) (int, error) {
	all, err := flights.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list flights: %w", err)
	}

	drifted := 0
	for _, f := range all {
		snap, err := inventory.Snapshot(ctx, f.ID)
		if err != nil {
			return drifted, fmt.Errorf("flight %s: %w", f.ID, err)
		}
		if len(snap) == 0 {
			fmt.Fprintf(out, "%s: not seeded\n", f.ID)
			continue
		}
		if seats := seatDrift(f, snap); len(seats) > 0 {
			drifted++
			fmt.Fprintf(out, "%s: %s\n", f.ID, strings.Join(seats, ","))
		}
	}
	return drifted, nil
}

// seatDrift lists stored seats whose inventory state disagrees: available
// seats must be available, occupied seats must be held or occupied
func seatDrift(f *domain.Flight, snap map[string]string) []string {
	var seats []string
	for _, seat := range f.AsientosDisponibles {
		if snap[seat] != repository.SeatStateAvailable {
			seats = append(seats, seat)
		}
	}
	for _, seat := range f.AsientosOcupados {
		if state, ok := snap[seat]; !ok || state == repository.SeatStateAvailable {
			seats = append(seats, seat)
		}
	}
	sort.Strings(seats)
	return seats
}
