package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/pkg/docstore"
)

const flightsPath = "vuelos_programados"

var errNothingToRelease = errors.New("seat is not occupied")

// DocstoreFlightRepository implements FlightRepository on the document store
type DocstoreFlightRepository struct {
	store docstore.Store
}

var _ FlightRepository = (*DocstoreFlightRepository)(nil)

// NewDocstoreFlightRepository creates a new DocstoreFlightRepository
func NewDocstoreFlightRepository(store docstore.Store) *DocstoreFlightRepository {
	return &DocstoreFlightRepository{store: store}
}

func flightPath(id string) string {
	return docstore.Join(flightsPath, id)
}

// stored strips the ID, which is the node key and not a field
func stored(f *domain.Flight) *domain.Flight {
	cp := *f
	cp.ID = ""
	return &cp
}

func (r *DocstoreFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	id, err := r.store.Push(ctx, flightsPath, stored(flight))
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	flight.ID = id
	return nil
}

func (r *DocstoreFlightRepository) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	var f domain.Flight
	if err := r.store.Get(ctx, flightPath(id), &f); err != nil {
		// ids with key-illegal characters can never name a stored flight
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidPath) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to get flight %s: %w", id, err)
	}
	f.ID = id
	return &f, nil
}

func (r *DocstoreFlightRepository) List(ctx context.Context) ([]*domain.Flight, error) {
	var all map[string]*domain.Flight
	if err := r.store.Get(ctx, flightsPath, &all); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return []*domain.Flight{}, nil
		}
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	return flightSlice(all), nil
}

func (r *DocstoreFlightRepository) SearchByDate(ctx context.Context, fecha string) ([]*domain.Flight, error) {
	all := map[string]*domain.Flight{}
	if err := r.store.QueryEqual(ctx, flightsPath, "fecha", fecha, &all); err != nil {
		return nil, fmt.Errorf("failed to search flights on %s: %w", fecha, err)
	}
	flights := flightSlice(all)
	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].HoraPartida < flights[j].HoraPartida
	})
	return flights, nil
}

func (r *DocstoreFlightRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.store.Update(ctx, flightPath(id), fields); err != nil {
		return fmt.Errorf("failed to update flight %s: %w", id, err)
	}
	return nil
}

func (r *DocstoreFlightRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, flightPath(id)); err != nil {
		return fmt.Errorf("failed to delete flight %s: %w", id, err)
	}
	return nil
}

func (r *DocstoreFlightRepository) OccupySeat(ctx context.Context, id, seat string) (*domain.Flight, error) {
	var result *domain.Flight
	err := r.store.Transaction(ctx, flightPath(id), func(node docstore.TransactionNode) (interface{}, error) {
		var f *domain.Flight
		if err := node.Unmarshal(&f); err != nil {
			return nil, err
		}
		if f == nil {
			return nil, domain.ErrFlightNotFound
		}
		if err := f.OccupySeat(seat); err != nil {
			return nil, err
		}
		result = f
		return stored(f), nil
	})
	if err != nil {
		if errors.Is(err, docstore.ErrInvalidPath) {
			return nil, domain.ErrFlightNotFound
		}
		if domain.IsNotFoundError(err) || domain.IsConflictError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to occupy seat %s on flight %s: %w", seat, id, err)
	}
	result.ID = id
	return result, nil
}

func (r *DocstoreFlightRepository) ReleaseSeat(ctx context.Context, id, seat string) error {
	err := r.store.Transaction(ctx, flightPath(id), func(node docstore.TransactionNode) (interface{}, error) {
		var f *domain.Flight
		if err := node.Unmarshal(&f); err != nil {
			return nil, err
		}
		if f == nil {
			return nil, domain.ErrFlightNotFound
		}
		if !f.ReleaseSeat(seat) {
			return nil, errNothingToRelease
		}
		return stored(f), nil
	})
	switch {
	case err == nil, errors.Is(err, errNothingToRelease):
		return nil
	case errors.Is(err, docstore.ErrInvalidPath):
		return domain.ErrFlightNotFound
	case domain.IsNotFoundError(err):
		return err
	default:
		return fmt.Errorf("failed to release seat %s on flight %s: %w", seat, id, err)
	}
}

func flightSlice(all map[string]*domain.Flight) []*domain.Flight {
	ids := make([]string, 0, len(all))
	for id, f := range all {
		if f != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	flights := make([]*domain.Flight, 0, len(ids))
	for _, id := range ids {
		f := all[id]
		f.ID = id
		flights = append(flights, f)
	}
	return flights
}
