package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	DNI      string `validate:"omitempty,dni"`
	Hora     string `validate:"omitempty,hhmm"`
	Fecha    string `validate:"omitempty,flightdate"`
	Clase    string `validate:"omitempty,seatclass"`
	Duracion string `validate:"omitempty,duration"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, RegisterOn(v))
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name  string
		in    sample
		valid bool
	}{
		{"all valid", sample{DNI: "12345678", Hora: "09:30", Fecha: "01/05/2026", Clase: "Primera", Duracion: "1h 20m"}, true},
		{"short dni", sample{DNI: "1234567"}, false},
		{"letters in dni", sample{DNI: "1234567A"}, false},
		{"bad hour", sample{Hora: "24:10"}, false},
		{"bad date", sample{Fecha: "2026/05/01"}, false},
		{"bad class", sample{Clase: "turista"}, false},
		{"bad duration", sample{Duracion: "abc"}, false},
		{"empty is allowed", sample{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegister_Idempotent(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register())
}

type describeSample struct {
	Nombre string `json:"nombre_completo" validate:"required"`
	Correo string `json:"correo,omitempty" validate:"omitempty,email"`
	DNI    string `json:"dni" validate:"omitempty,dni"`
}

func TestDescribe(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(describeSample{Correo: "no-es-correo", DNI: "12"})
	require.Error(t, err)
	msg := Describe(err)
	assert.Contains(t, msg, "Campo nombre_completo es obligatorio")
	assert.Contains(t, msg, "Campo correo debe ser un correo válido")
	assert.Contains(t, msg, "Campo dni debe tener 8 dígitos")

	err = v.Struct(sample{Duracion: "3000000h"})
	require.Error(t, err)
	assert.Equal(t, "Campo Duracion debe ser como 2h 30m", Describe(err))

	assert.Equal(t, "Datos de solicitud inválidos", Describe(assert.AnError))
}
