package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Winan03/AeroFlash-app/internal/domain"
	"github.com/Winan03/AeroFlash-app/pkg/docstore"
)

func newFlight(fecha, hora string) *domain.Flight {
	f := &domain.Flight{
		NumeroVuelo: "AF0900" + hora[:2],
		Origen:      "Lima",
		Destino:     "Cusco",
		Fecha:       fecha,
		HoraPartida: hora,
		HoraLlegada: "23:59",
		Clase:       string(domain.ClassPrimera),
		Precio:      180,
	}
	f.ApplyDefaults()
	return f
}

func TestFlightRepository_CreateGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreFlightRepository(docstore.NewMemory())

	a := newFlight("2026-05-01", "09:00")
	b := newFlight("2026-05-02", "10:00")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.NotEmpty(t, a.ID)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Len(t, got.AsientosDisponibles, 16)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestFlightRepository_ListEmpty(t *testing.T) {
	repo := NewDocstoreFlightRepository(docstore.NewMemory())
	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFlightRepository_SearchByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreFlightRepository(docstore.NewMemory())
	require.NoError(t, repo.Create(ctx, newFlight("2026-05-01", "18:00")))
	require.NoError(t, repo.Create(ctx, newFlight("2026-05-01", "07:30")))
	require.NoError(t, repo.Create(ctx, newFlight("2026-05-02", "08:00")))

	got, err := repo.SearchByDate(ctx, "2026-05-01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "07:30", got[0].HoraPartida)
	assert.NotEmpty(t, got[0].ID)
}

func TestFlightRepository_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreFlightRepository(docstore.NewMemory())
	f := newFlight("2026-05-01", "09:00")
	require.NoError(t, repo.Create(ctx, f))

	require.NoError(t, repo.Update(ctx, f.ID, map[string]interface{}{"puerta": "B12", "precio": 210.0}))
	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "B12", got.Puerta)
	assert.Equal(t, domain.Amount(210), got.Precio)

	assert.ErrorIs(t, repo.Update(ctx, "missing", map[string]interface{}{"puerta": "A1"}), domain.ErrFlightNotFound)

	require.NoError(t, repo.Delete(ctx, f.ID))
	_, err = repo.GetByID(ctx, f.ID)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, f.ID), domain.ErrFlightNotFound)
}

func TestFlightRepository_OccupyAndReleaseSeat(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreFlightRepository(docstore.NewMemory())
	f := newFlight("2026-05-01", "09:00")
	require.NoError(t, repo.Create(ctx, f))

	after, err := repo.OccupySeat(ctx, f.ID, "2C")
	require.NoError(t, err)
	assert.Equal(t, f.ID, after.ID)
	assert.Contains(t, after.AsientosOcupados, "2C")
	assert.NotContains(t, after.AsientosDisponibles, "2C")

	_, err = repo.OccupySeat(ctx, f.ID, "2C")
	assert.ErrorIs(t, err, domain.ErrSeatUnavailable)
	_, err = repo.OccupySeat(ctx, "missing", "2C")
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	require.NoError(t, repo.ReleaseSeat(ctx, f.ID, "2C"))
	require.NoError(t, repo.ReleaseSeat(ctx, f.ID, "2C"))
	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Contains(t, got.AsientosDisponibles, "2C")
	assert.Empty(t, got.AsientosOcupados)
}

func TestFlightRepository_ConcurrentOccupySingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreFlightRepository(docstore.NewMemory())
	f := newFlight("2026-05-01", "09:00")
	require.NoError(t, repo.Create(ctx, f))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.OccupySeat(ctx, f.ID, "1A")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if domain.IsConflictError(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Equal(t, 19, conflicts)
}

func newTicket(code string) *domain.Ticket {
	return &domain.Ticket{
		CodigoTicket: code,
		Pasajero:     domain.Passenger{NombreCompleto: "Ana Quispe", DNI: "12345678", Correo: "ana@example.com"},
		Vuelo:        domain.FlightSnapshot{NumeroVuelo: "AF09001", Asiento: "1A"},
		Estado:       domain.StatusConfirmado,
		Precio:       150,
	}
}

func TestTicketRepository_CreateNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreTicketRepository(docstore.NewMemory())

	require.NoError(t, repo.Create(ctx, newTicket("AF1234AB")))
	other := newTicket("AF1234AB")
	other.Pasajero.NombreCompleto = "Otro"
	assert.ErrorIs(t, repo.Create(ctx, other), ErrTicketCodeTaken)

	got, err := repo.GetByCode(ctx, "AF1234AB")
	require.NoError(t, err)
	assert.Equal(t, "Ana Quispe", got.Pasajero.NombreCompleto)

	ok, err := repo.Exists(ctx, "AF1234AB")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, "AF0000ZZ")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlightRepository_IllegalIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreFlightRepository(docstore.NewMemory())

	for _, id := range []string{"abc.def", "a$b", "a#b", "a[0]"} {
		t.Run(id, func(t *testing.T) {
			_, err := repo.GetByID(ctx, id)
			assert.ErrorIs(t, err, domain.ErrFlightNotFound)
			assert.ErrorIs(t, repo.Update(ctx, id, map[string]interface{}{"puerta": "A1"}), domain.ErrFlightNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, id), domain.ErrFlightNotFound)
			_, err = repo.OccupySeat(ctx, id, "1A")
			assert.ErrorIs(t, err, domain.ErrFlightNotFound)
			assert.ErrorIs(t, repo.ReleaseSeat(ctx, id, "1A"), domain.ErrFlightNotFound)
		})
	}
}

func TestTicketRepository_GetByCodeInvalidPath(t *testing.T) {
	repo := NewDocstoreTicketRepository(docstore.NewMemory())
	_, err := repo.GetByCode(context.Background(), "AF.12")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestTicketRepository_UpdateStatusKeepsUnknownFields(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := NewDocstoreTicketRepository(store)
	require.NoError(t, store.Set(ctx, "tickets/AF1111AA", map[string]interface{}{
		"codigo_ticket": "AF1111AA",
		"estado":        "Confirmado",
		"precio":        "99.50",
		"metodo_pago":   "tarjeta",
	}))

	got, err := repo.UpdateStatus(ctx, "AF1111AA", domain.StatusCancelada)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelada, got.Estado)
	assert.Equal(t, domain.Amount(99.5), got.Precio)

	var raw map[string]interface{}
	require.NoError(t, store.Get(ctx, "tickets/AF1111AA", &raw))
	assert.Equal(t, "tarjeta", raw["metodo_pago"])

	_, err = repo.UpdateStatus(ctx, "AF0000ZZ", domain.StatusCancelada)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestTicketRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewDocstoreTicketRepository(docstore.NewMemory())

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Create(ctx, newTicket("AF1234AB")))
	require.NoError(t, repo.Create(ctx, newTicket("AF5678CD")))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "AF5678CD", all["AF5678CD"].CodigoTicket)
}
