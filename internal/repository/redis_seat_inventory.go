package repository

import (
	"context"
	_ "embed"
	"fmt"

	pkgredis "github.com/Winan03/AeroFlash-app/pkg/redis"
)

//go:embed scripts/claim_seat.lua
var claimSeatScript string

//go:embed scripts/release_seat.lua
var releaseSeatScript string

//go:embed scripts/seed_seats.lua
var seedSeatsScript string

const (
	scriptClaimSeat   = "claim_seat"
	scriptReleaseSeat = "release_seat"
	scriptSeedSeats   = "seed_seats"
)

// RedisSeatInventory implements SeatInventory with one hash per flight
type RedisSeatInventory struct {
	client *pkgredis.Client
}

var _ SeatInventory = (*RedisSeatInventory)(nil)

// NewRedisSeatInventory creates a new RedisSeatInventory and registers its scripts
func NewRedisSeatInventory(client *pkgredis.Client) *RedisSeatInventory {
	client.RegisterScript(scriptClaimSeat, claimSeatScript)
	client.RegisterScript(scriptReleaseSeat, releaseSeatScript)
	client.RegisterScript(scriptSeedSeats, seedSeatsScript)
	return &RedisSeatInventory{client: client}
}

func seatsKey(flightID string) string {
	return fmt.Sprintf("flight:%s:seats", flightID)
}

func (r *RedisSeatInventory) Seed(ctx context.Context, flightID string, available, occupied []string, replace bool) error {
	mode := "init"
	if replace {
		mode = "replace"
	}
	args := make([]interface{}, 0, 1+2*(len(available)+len(occupied)))
	args = append(args, mode)
	for _, seat := range available {
		args = append(args, seat, SeatStateAvailable)
	}
	for _, seat := range occupied {
		args = append(args, seat, SeatStateOccupied)
	}

	if _, err := r.run(ctx, scriptSeedSeats, flightID, args...); err != nil {
		return err
	}
	return nil
}

func (r *RedisSeatInventory) Claim(ctx context.Context, flightID, seat, code string) (*ClaimResult, error) {
	return r.run(ctx, scriptClaimSeat, flightID, seat, code)
}

func (r *RedisSeatInventory) Release(ctx context.Context, flightID, seat, code string) error {
	res, err := r.run(ctx, scriptReleaseSeat, flightID, seat, code)
	if err != nil {
		return err
	}
	if !res.Success && res.ErrorCode != ClaimErrNotHolder && res.ErrorCode != ClaimErrSeatNotFound {
		return fmt.Errorf("release seat %s: %s", seat, res.ErrorMessage)
	}
	return nil
}

func (r *RedisSeatInventory) Drop(ctx context.Context, flightID string) error {
	if err := r.client.Del(ctx, seatsKey(flightID)).Err(); err != nil {
		return fmt.Errorf("failed to drop seat inventory of %s: %w", flightID, err)
	}
	return nil
}

// Snapshot returns seat -> state for a flight
func (r *RedisSeatInventory) Snapshot(ctx context.Context, flightID string) (map[string]string, error) {
	return r.client.HGetAll(ctx, seatsKey(flightID)).Result()
}

// run executes a script and parses {1, ...} or {0, code, message}
func (r *RedisSeatInventory) run(ctx context.Context, script, flightID string, args ...interface{}) (*ClaimResult, error) {
	result := r.client.RunScript(ctx, script, []string{seatsKey(flightID)}, args...)
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to execute %s script: %w", script, result.Err())
	}

	values, err := result.Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to parse script result: %w", err)
	}
	if len(values) < 3 {
		return nil, fmt.Errorf("unexpected script result length: %d", len(values))
	}

	if ok, _ := values[0].(int64); ok == 1 {
		return &ClaimResult{Success: true}, nil
	}
	code, _ := values[1].(string)
	msg, _ := values[2].(string)
	return &ClaimResult{ErrorCode: code, ErrorMessage: msg}, nil
}
