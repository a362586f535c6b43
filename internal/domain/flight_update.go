package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type fieldNormalizer func(v interface{}) (interface{}, error)

var flightFields = map[string]fieldNormalizer{
	"numero_vuelo":         nonEmptyString,
	"origen":               nonEmptyString,
	"destino":              nonEmptyString,
	"aerolinea":            nonEmptyString,
	"tipo_avion":           nonEmptyString,
	"puerta":               nonEmptyString,
	"fecha":                normalizeDateField,
	"hora_partida":         normalizeTimeField,
	"hora_llegada":         normalizeTimeField,
	"duracion":             normalizeDurationField,
	"clase":                normalizeClassField,
	"precio":               normalizePriceField,
	"activo":               boolField,
	"asientos_disponibles": seatListField,
	"asientos_ocupados":    seatListField,
}

// ValidateFlightUpdate checks a partial update and returns the fields in
// canonical form. The id key is ignored.
func ValidateFlightUpdate(fields map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for key, raw := range fields {
		if key == "id" {
			continue
		}
		normalize, ok := flightFields[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		v, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", ErrInvalidFieldType
	}
	return strings.TrimSpace(s), nil
}

func nonEmptyString(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, ErrMissingField
	}
	return s, nil
}

func normalizeDateField(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return NormalizeDate(s)
}

func normalizeTimeField(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	return NormalizeTime(s)
}

func normalizeDurationField(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	if _, err := ParseDuration(s); err != nil {
		return nil, err
	}
	return s, nil
}

func normalizeClassField(v interface{}) (interface{}, error) {
	s, err := asString(v)
	if err != nil {
		return nil, err
	}
	c, err := ParseSeatClass(s)
	if err != nil {
		return nil, err
	}
	return string(c), nil
}

// ParsePrice accepts a JSON number or a numeric string
func ParsePrice(v interface{}) (float64, error) {
	var p float64
	switch t := v.(type) {
	case float64:
		p = t
	case int:
		p = float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, ErrInvalidPrice
		}
		p = f
	default:
		return 0, ErrInvalidPrice
	}
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, ErrInvalidPrice
	}
	return p, nil
}

func normalizePriceField(v interface{}) (interface{}, error) {
	return ParsePrice(v)
}

func boolField(v interface{}) (interface{}, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, ErrInvalidFieldType
	}
	return b, nil
}

func seatListField(v interface{}) (interface{}, error) {
	items, ok := v.([]interface{})
	if !ok {
		if seats, isStrings := v.([]string); isStrings {
			return seats, nil
		}
		return nil, ErrInvalidFieldType
	}
	seats := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, ErrInvalidFieldType
		}
		seats = append(seats, s)
	}
	return seats, nil
}
