package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dvillacis/puntoventa-api/internal/application/dto"
	"github.com/dvillacis/puntoventa-api/internal/domain"
	"github.com/dvillacis/puntoventa-api/internal/domain/entity"
	"github.com/dvillacis/puntoventa-api/internal/domain/repository"
	"github.com/dvillacis/puntoventa-api/pkg/config"
	"github.com/dvillacis/puntoventa-api/pkg/jwt"
	"github.com/dvillacis/puntoventa-api/pkg/logger"
)

var validRoles = map[string]bool{
	entity.RoleAdmin:    true,
	entity.RoleCajero:   true,
	entity.RoleContador: true,
}

// Usecase autenticación y gestión de usuarios.
type Usecase struct {
	users repository.UserRepository
	cfg   config.JWTConfig
	log   *logger.Logger
}

func NewUsecase(users repository.UserRepository, cfg config.JWTConfig, log *logger.Logger) *Usecase {
	return &Usecase{users: users, cfg: cfg, log: log}
}

// Login valida credenciales y emite el token. Email inexistente y contraseña
// incorrecta responden lo mismo: no se filtra cuál de los dos falló.
func (u *Usecase) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := u.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(u.cfg.Secret, user.ID, user.CompanyID, user.Role, u.cfg.Issuer, u.cfg.Expiration)
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("inicio de sesión")
	return &dto.LoginResponse{Token: token, Name: user.Name, Role: user.Role}, nil
}

// Register crea un usuario (operación de administrador).
func (u *Usecase) Register(ctx context.Context, companyID string, req dto.RegisterUserRequest) (*entity.User, error) {
	if req.Email == "" || len(req.Password) < 8 || req.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if !validRoles[req.Role] {
		return nil, domain.ErrInvalidInput
	}
	if existing, err := u.users.GetByEmail(req.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
