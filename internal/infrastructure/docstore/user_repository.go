// Package docstore implementa repositorios sobre el record store genérico.
package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
)

// UsersCollection colección de usuarios.
const UsersCollection = "usuarios"

const (
	fieldEmail        = "email"
	fieldPasswordHash = "passwordHash"
	fieldNome         = "nome"
	fieldRole         = "role"
	fieldStatus       = "status"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios como documentos de la colección usuarios. El email se guarda en minúsculas.
type UserRepo struct {
	store repository.RecordStore
}

// NewUserRepository construye el repositorio.
func NewUserRepository(store repository.RecordStore) *UserRepo {
	return &UserRepo{store: store}
}

// Create persiste el usuario y asigna user.ID. Email repetido → domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	email := normalizeEmail(user.Email)
	existing, err := r.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("usuario %s: %w", email, domain.ErrConflict)
	}
	id, err := r.store.Insert(ctx, UsersCollection, map[string]any{
		fieldEmail:            email,
		fieldPasswordHash:     user.PasswordHash,
		fieldNome:             user.Name,
		fieldRole:             user.Role,
		fieldStatus:           user.Status,
		entity.FieldCreatedAt: user.CreatedAt,
		entity.FieldUpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		return domain.StoreFailure("insertar usuario", err)
	}
	user.ID = id
	user.Email = email
	return nil
}

// GetByID devuelve domain.ErrNotFound si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	rec, err := r.store.Get(ctx, UsersCollection, id)
	if err != nil {
		return nil, domain.StoreFailure("leer usuario", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("usuario %s: %w", id, domain.ErrNotFound)
	}
	return toUser(*rec), nil
}

// FindByEmail recorre la colección; el volumen de usuarios de una clínica es chico.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = normalizeEmail(email)
	recs, err := r.store.ListAll(ctx, UsersCollection)
	if err != nil {
		return nil, domain.StoreFailure("listar usuarios", err)
	}
	for _, rec := range recs {
		if s, _ := rec.Fields[fieldEmail].(string); normalizeEmail(s) == email {
			return toUser(rec), nil
		}
	}
	return nil, nil
}

func toUser(rec repository.Record) *entity.User {
	str := func(k string) string {
		s, _ := rec.Fields[k].(string)
		return s
	}
	u := &entity.User{
		ID:           rec.ID,
		Email:        str(fieldEmail),
		PasswordHash: str(fieldPasswordHash),
		Name:         str(fieldNome),
		Role:         str(fieldRole),
		Status:       str(fieldStatus),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.CreatedAt,
	}
	if t := entity.TimeValue(rec.Fields, entity.FieldCreatedAt); t != nil {
		u.CreatedAt = *t
	}
	if t := entity.TimeValue(rec.Fields, entity.FieldUpdatedAt); t != nil {
		u.UpdatedAt = *t
	}
	if u.Status == "" {
		u.Status = "active"
	}
	return u
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
