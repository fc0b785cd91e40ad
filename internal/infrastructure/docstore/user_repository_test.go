package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/memory"
)

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(memory.NewDocumentStore())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	u := &entity.User{
		Email: "  Ana@Clinica.VET ", PasswordHash: "$2a$hash", Name: "Ana",
		Role: entity.RoleAdmin, Status: "active", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@clinica.vet", u.Email)

	found, err := repo.FindByEmail(ctx, "ANA@clinica.vet")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)
	assert.Equal(t, "$2a$hash", found.PasswordHash)
	assert.Equal(t, entity.RoleAdmin, found.Role)
	assert.True(t, found.CreatedAt.Equal(now))

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)

	missing, err := repo.FindByEmail(ctx, "otro@clinica.vet")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = repo.Create(ctx, &entity.User{Email: "ana@clinica.vet", Role: entity.RoleOperador})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
