package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
	"github.com/jhoicas/estoque-vet/internal/domain/repository"
	"github.com/jhoicas/estoque-vet/pkg/jwt"
	"github.com/jhoicas/estoque-vet/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// ActivityLog escritura de la bitácora.
type ActivityLog interface {
	Append(ctx context.Context, in activity.Entry) activity.AppendOutcome
}

// RegisterInput alta de usuario. Role vacío es operador.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Session token emitido y el usuario autenticado.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
	Log       activity.AppendOutcome
}

// UseCase casos de uso de autenticación: login, logout y registro.
type UseCase struct {
	users  repository.UserRepository
	log    ActivityLog
	jwtCfg JWTConfig
	logger *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(users repository.UserRepository, log ActivityLog, jwtCfg JWTConfig, lg *logger.Logger) *UseCase {
	if lg == nil {
		lg = logger.Nop()
	}
	return &UseCase{users: users, log: log, jwtCfg: jwtCfg, logger: lg, now: time.Now}
}

// Login verifica email/password, genera JWT y deja un registro login.
// Usuario inexistente y password incorrecta responden igual.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.Invalid("email", "email y password son obligatorios")
	}
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.StoreFailure("buscar usuario", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Token:     token,
		ExpiresAt: uc.now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      user,
	}
	s.Log = uc.log.Append(ctx, activity.Entry{
		Actor: entity.Actor{UserID: user.ID, Email: user.Email, Role: user.Role},
		Kind:  entity.OpLogin,
	})
	uc.logger.WithContext(ctx).Info().Str("usuario", user.Email).Msg("login")
	return s, nil
}

// Logout sólo deja el registro: los tokens no tienen estado en el servidor.
func (uc *UseCase) Logout(ctx context.Context, actor entity.Actor) activity.AppendOutcome {
	return uc.log.Append(ctx, activity.Entry{Actor: actor, Kind: entity.OpLogout})
}

// Register crea un usuario con la password hasheada en bcrypt.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "email inválido")
	}
	if len(in.Password) < 8 {
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	}
	role := in.Role
	if role == "" {
		role = entity.RoleOperador
	}
	if role != entity.RoleAdmin && role != entity.RoleOperador {
		return nil, domain.Invalid("role", "debe ser admin u operador")
	}

	existing, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.StoreFailure("buscar usuario", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := uc.now().UTC()
	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, domain.StoreFailure("crear usuario", err)
	}
	return user, nil
}
