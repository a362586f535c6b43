// Package validation registers the binding tags used by request DTOs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Winan03/AeroFlash-app/internal/domain"
)

var (
	dniPattern = regexp.MustCompile(`^\d{8}$`)

	registerOnce sync.Once
	registerErr  error
)

// Register adds the custom tags to gin's validator. Safe to call more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

// RegisterOn adds the custom tags to v
func RegisterOn(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"dni":        validateDNI,
		"hhmm":       validateHHMM,
		"flightdate": validateFlightDate,
		"seatclass":  validateSeatClass,
		"duration":   validateDuration,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	v.RegisterTagNameFunc(jsonName)
	return nil
}

// jsonName reports fields by their JSON key
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Describe turns a binding error into a message for the caller
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Datos de solicitud inválidos"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("Campo %s es obligatorio", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("Campo %s debe ser un correo válido", fe.Field()))
		case "dni":
			msgs = append(msgs, fmt.Sprintf("Campo %s debe tener 8 dígitos", fe.Field()))
		case "flightdate":
			msgs = append(msgs, fmt.Sprintf("Campo %s debe ser YYYY-MM-DD o DD/MM/YYYY", fe.Field()))
		case "hhmm":
			msgs = append(msgs, fmt.Sprintf("Campo %s debe ser HH:MM", fe.Field()))
		case "duration":
			msgs = append(msgs, fmt.Sprintf("Campo %s debe ser como 2h 30m", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("Campo %s inválido", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func validateDNI(fl validator.FieldLevel) bool {
	return dniPattern.MatchString(fl.Field().String())
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := domain.NormalizeTime(fl.Field().String())
	return err == nil
}

func validateFlightDate(fl validator.FieldLevel) bool {
	_, err := domain.NormalizeDate(fl.Field().String())
	return err == nil
}

func validateSeatClass(fl validator.FieldLevel) bool {
	_, err := domain.ParseSeatClass(fl.Field().String())
	return err == nil
}

func validateDuration(fl validator.FieldLevel) bool {
	_, err := domain.ParseDuration(fl.Field().String())
	return err == nil
}
