package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-vet/internal/domain"
)

// StoredTimeLayout ancho fijo: el orden lexicográfico coincide con el cronológico en UTC.
const StoredTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var timeLayouts = []string{StoredTimeLayout, time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	}
	return "", domain.Invalid(key, fmt.Sprintf("se esperaba texto, llegó %T", v))
}

func int64Field(fields map[string]any, key string) (int64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, domain.Invalid(key, "obligatorio")
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, domain.Invalid(key, err.Error())
	}
	return n, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("no es entero: %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case decimal.Decimal:
		if !n.IsInteger() {
			return 0, fmt.Errorf("no es entero: %s", n)
		}
		return n.IntPart(), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("se esperaba número, llegó %T", v)
}

func decimalField(fields map[string]any, key string) (decimal.Decimal, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return decimal.Zero, nil
	}
	d, err := ToDecimal(v)
	if err != nil {
		return decimal.Zero, domain.Invalid(key, err.Error())
	}
	return d, nil
}

// ToDecimal convierte valores numéricos sueltos (JSON, texto con coma decimal) a decimal.
func ToDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return decimal.Zero, nil
		}
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		}
		return decimal.NewFromString(s)
	}
	return decimal.Zero, fmt.Errorf("se esperaba número, llegó %T", v)
}

func timeField(fields map[string]any, key string) (*time.Time, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return &t, nil
	case *time.Time:
		return t, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed, nil
			}
		}
		return nil, domain.Invalid(key, "fecha con formato desconocido: "+t)
	}
	return nil, domain.Invalid(key, fmt.Sprintf("se esperaba fecha, llegó %T", v))
}

// TimeValue fecha guardada bajo key (time.Time o texto); nil si falta o es ilegible.
func TimeValue(fields map[string]any, key string) *time.Time {
	t, err := timeField(fields, key)
	if err != nil {
		return nil
	}
	return t
}
