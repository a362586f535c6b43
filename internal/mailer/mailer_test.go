package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

type fakeTransport struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeTransport) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func testTicket() *domain.Ticket {
	return &domain.Ticket{
		CodigoTicket: "AF1234XY",
		Pasajero: domain.Passenger{
			NombreCompleto: "Ana <Quispe>",
			DNI:            "12345678",
			Correo:         "ana@example.com",
		},
		Vuelo: domain.FlightSnapshot{
			NumeroVuelo: "AF10301",
			Origen:      "Lima",
			Destino:     "Cusco",
			Fecha:       "2026-10-20",
			HoraPartida: "10:30",
			HoraLlegada: "11:45",
			Clase:       "Económica",
			Aerolinea:   "AeroFlash Airlines",
			Puerta:      "A1",
			Asiento:     "1A",
		},
		Estado: domain.StatusConfirmado,
		Precio: 250.5,
	}
}

func newTestMailer(t *testing.T, tr Transport) *Mailer {
	t.Helper()
	m, err := New(tr, &Config{SenderEmail: "reservas@aeroflash.com"})
	require.NoError(t, err)
	return m
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Confirmación de Vuelo - AF1234XY | AeroFlash Airlines", Subject("AF1234XY"))
}

func TestRender(t *testing.T) {
	m := newTestMailer(t, &fakeTransport{})

	text, err := m.RenderText(testTicket())
	require.NoError(t, err)
	assert.Contains(t, text, "Hola Ana <Quispe>,")
	assert.Contains(t, text, "Código de Ticket: AF1234XY")
	assert.Contains(t, text, "Asiento: 1A")

	html, err := m.RenderHTML(testTicket())
	require.NoError(t, err)
	assert.Contains(t, html, "Ana &lt;Quispe&gt;")
	assert.Contains(t, html, `<div class="code">AF1234XY</div>`)
	assert.Contains(t, html, "S/ 250.50")
}

func TestSendTicket(t *testing.T) {
	tr := &fakeTransport{}
	m := newTestMailer(t, tr)

	require.NoError(t, m.SendTicket(context.Background(), testTicket()))
	require.Len(t, tr.sent, 1)

	msg := tr.sent[0]
	assert.Equal(t, []string{Subject("AF1234XY")}, msg.GetGenHeader(mail.HeaderSubject))
	to := msg.GetToString()
	assert.Equal(t, []string{"<ana@example.com>"}, to)
	assert.Len(t, msg.GetParts(), 2)
}

func TestSendTicket_Errors(t *testing.T) {
	m := newTestMailer(t, &fakeTransport{})
	ticket := testTicket()
	ticket.Pasajero.Correo = ""
	assert.ErrorIs(t, m.SendTicket(context.Background(), ticket), ErrNoRecipient)

	failing := newTestMailer(t, &fakeTransport{err: errors.New("relay refused")})
	err := failing.SendTicket(context.Background(), testTicket())
	assert.ErrorContains(t, err, "relay refused")
}

func TestNewSMTPTransport_RequiresHost(t *testing.T) {
	_, err := NewSMTPTransport(&Config{})
	assert.Error(t, err)

	client, err := NewSMTPTransport(&Config{Host: "smtp.example.com", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
