// seeduser crea el primer administrador; el registro por la API exige un admin autenticado.
//
// Uso: SEED_PASSWORD=... go run ./cmd/seeduser -email admin@clinica.vet [-name "Dra. Ana"] [-role admin]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/application/auth"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/docstore"
	"github.com/jhoicas/estoque-vet/internal/infrastructure/postgres"
	"github.com/jhoicas/estoque-vet/pkg/config"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email del usuario")
	name := flag.String("name", "", "nombre visible")
	role := flag.String("role", entity.RoleAdmin, "admin u operador")
	flag.Parse()

	password := os.Getenv("SEED_PASSWORD")
	if *email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "se requieren -email y SEED_PASSWORD")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seeduser"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema")
	}
	store := postgres.NewDocumentStore(pool)

	uc := auth.NewUseCase(docstore.NewUserRepository(store), activity.NewWriter(store, cfg.App.Location(), log), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	user, err := uc.Register(ctx, auth.RegisterInput{Email: *email, Password: password, Name: *name, Role: *role})
	switch {
	case errors.Is(err, domain.ErrConflict):
		log.Info().Str("email", *email).Msg("el usuario ya existe")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("crear usuario")
	}
	log.Info().Str("id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("usuario creado")
}
