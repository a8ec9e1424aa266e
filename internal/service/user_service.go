package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"branch-api/internal/domain"
	"branch-api/internal/repository"
)

// UserService coordina reglas de negocio del agregado usuario-perfil.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	cache  ProfileCache
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, cache ProfileCache) *UserService {
	if cache == nil {
		cache = NewMemoryProfileCache(time.Minute)
	}
	return &UserService{
		logger: logger,
		users:  users,
		cache:  cache,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ThemePatch actualiza campos individuales del tema.
type ThemePatch struct {
	PageBackground *string
	ButtonStyle    *string
	FontFamily     *string
}

// ProfileUpdateInput es el parche permitido de un perfil. Campos nil se
// dejan intactos; un parche vacío es un no-op válido.
type ProfileUpdateInput struct {
	Name   *string
	Bio    *string
	Avatar *string
	Theme  *ThemePatch
}

// Register crea el usuario con tema por defecto y lista de enlaces vacía.
// La unicidad de username y email la garantizan los índices únicos del
// almacenamiento: dos registros concurrentes con el mismo username no
// pueden tener éxito ambos.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	username := strings.TrimSpace(input.Username)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)

	if username == "" {
		return domain.User{}, ErrInvalidUsername
	}
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return domain.User{}, ErrInvalidEmail
	}
	if password == "" {
		return domain.User{}, ErrInvalidPassword
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		Theme:        domain.DefaultTheme(),
		Links:        []domain.Link{},
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, translateUniqueViolation(err)
	}

	return user, nil
}

// Authenticate resuelve por username exacto y verifica la contraseña.
// Usuario inexistente y contraseña incorrecta devuelven el mismo error:
// la respuesta no debe permitir enumerar usuarios.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if s.logger != nil {
				s.logger.Debug("login for unknown username", zap.String("username", username))
			}
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if !CheckPassword(password, user.PasswordHash) {
		if s.logger != nil {
			s.logger.Debug("login with wrong password", zap.String("username", username))
		}
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByUsername resuelve por username con igualdad exacta.
func (s *UserService) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// PublicProfile resuelve el perfil público sin distinguir mayúsculas.
func (s *UserService) PublicProfile(ctx context.Context, username string) (domain.PublicProfile, error) {
	key := cacheKey(username)
	if profile, ok := s.cache.Get(key); ok {
		return profile, nil
	}

	user, err := s.users.GetByUsernameFold(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PublicProfile{}, ErrUserNotFound
		}
		return domain.PublicProfile{}, err
	}

	profile := user.PublicView()
	s.cache.Set(cacheKey(user.Username), profile)
	return profile, nil
}

// UpdateProfile aplica solo los campos presentes del parche. Los sub-campos
// del tema se mezclan sobre el tema actual, nunca lo reemplazan entero.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	patch := repository.ProfilePatch{
		Name:   input.Name,
		Bio:    input.Bio,
		Avatar: input.Avatar,
	}
	if input.Theme != nil {
		theme := user.Theme.WithDefaults()
		if input.Theme.PageBackground != nil {
			theme.PageBackground = *input.Theme.PageBackground
		}
		if input.Theme.ButtonStyle != nil {
			theme.ButtonStyle = *input.Theme.ButtonStyle
		}
		if input.Theme.FontFamily != nil {
			theme.FontFamily = *input.Theme.FontFamily
		}
		patch.Theme = &theme
	}

	if err := s.users.UpdateProfile(ctx, userID, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	s.cache.Invalidate(cacheKey(updated.Username))
	return updated, nil
}

// translateUniqueViolation mapea violaciones de índice único del almacén a
// errores de conflicto del dominio, según el nombre de la constraint.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return ErrUsernameTaken
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailTaken
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cacheKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
