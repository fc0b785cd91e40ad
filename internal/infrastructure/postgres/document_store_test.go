package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/pkg/config"
)

func TestEncodeFields(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sp := time.FixedZone("BRT", -3*3600)
	validade := time.Date(2026, 3, 15, 0, 0, 0, 0, sp)
	var sinFecha *time.Time

	body, err := encodeFields(map[string]any{
		"nome":          "Seringa",
		"quantidade":    int64(10),
		"validade":      &validade,
		"transferidoEm": sinFecha,
		"timestamp":     repository.ServerTimestamp,
	}, now)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "2026-03-15T03:00:00.000000000Z", got["validade"])
	assert.Equal(t, "2025-06-01T12:00:00.000000000Z", got["timestamp"])
	assert.Nil(t, got["transferidoEm"])
	assert.Equal(t, "Seringa", got["nome"])
}

func TestDecodeFields_ConservaNumeros(t *testing.T) {
	fields, err := decodeFields([]byte(`{"valor": 0.1, "quantidade": 12}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("0.1"), fields["valor"])
	assert.Equal(t, json.Number("12"), fields["quantidade"])

	_, err = decodeFields([]byte(`{`))
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: codeUniqueViolation}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		Host: "db", Port: 5433, User: "vet", Password: "p@ss:word", DBName: "estoque", SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss:word", pc.ConnConfig.Password)
	assert.NotNil(t, pc.AfterConnect)

	pc, err = poolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@other:5432/x?sslmode=disable", MaxConns: 3})
	require.NoError(t, err)
	assert.Equal(t, "other", pc.ConnConfig.Host)
	assert.Equal(t, int32(3), pc.MaxConns)
}
