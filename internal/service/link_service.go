package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"branch-api/internal/domain"
	"branch-api/internal/repository"
)

var (
	// ErrLinkNotFound cubre tanto enlaces inexistentes como enlaces de otro
	// dueño: la respuesta no debe revelar si el id existe bajo otro usuario.
	ErrLinkNotFound = errors.New("link not found")
	ErrInvalidLink  = errors.New("link title and url are required")
)

// LinkService gestiona los enlaces embebidos en el perfil de un usuario.
type LinkService struct {
	logger *zap.Logger
	users  repository.UserRepository
	cache  ProfileCache
}

func NewLinkService(logger *zap.Logger, users repository.UserRepository, cache ProfileCache) *LinkService {
	if cache == nil {
		cache = NewMemoryProfileCache(0)
	}
	return &LinkService{
		logger: logger,
		users:  users,
		cache:  cache,
	}
}

type LinkInput struct {
	Title string
	URL   string
	Icon  string
}

// LinkUpdateInput es el parche parcial de un enlace; campos nil quedan igual.
type LinkUpdateInput struct {
	Title *string
	URL   *string
	Icon  *string
}

// AddLink agrega un enlace al final de la lista del dueño. El orden de la
// lista es el orden de creación.
func (s *LinkService) AddLink(ctx context.Context, userID string, input LinkInput) (domain.Link, error) {
	title := strings.TrimSpace(input.Title)
	url := strings.TrimSpace(input.URL)
	if title == "" || url == "" {
		return domain.Link{}, ErrInvalidLink
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Link{}, ErrUserNotFound
		}
		return domain.Link{}, err
	}

	link := domain.Link{
		ID:    uuid.NewString(),
		Title: title,
		URL:   url,
		Icon:  strings.TrimSpace(input.Icon),
	}
	if err := s.users.AppendLink(ctx, userID, link); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Link{}, ErrUserNotFound
		}
		return domain.Link{}, err
	}

	s.cache.Invalidate(cacheKey(user.Username))
	return link, nil
}

// UpdateLink reemplaza los campos indicados de un enlace del dueño. El
// almacén aplica el cambio en una sola operación condicionada a dueño+id.
func (s *LinkService) UpdateLink(ctx context.Context, userID, linkID string, input LinkUpdateInput) (domain.Link, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Link{}, ErrUserNotFound
		}
		return domain.Link{}, err
	}

	current, ok := findLink(user.Links, linkID)
	if !ok {
		return domain.Link{}, ErrLinkNotFound
	}

	merged := current
	if input.Title != nil {
		merged.Title = strings.TrimSpace(*input.Title)
	}
	if input.URL != nil {
		merged.URL = strings.TrimSpace(*input.URL)
	}
	if input.Icon != nil {
		merged.Icon = strings.TrimSpace(*input.Icon)
	}
	if merged.Title == "" || merged.URL == "" {
		return domain.Link{}, ErrInvalidLink
	}

	if err := s.users.UpdateLink(ctx, userID, linkID, merged); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Link{}, ErrLinkNotFound
		}
		return domain.Link{}, err
	}

	s.cache.Invalidate(cacheKey(user.Username))
	return merged, nil
}

// DeleteLink elimina un enlace del dueño. Borrar dos veces el mismo id
// falla la segunda vez con ErrLinkNotFound.
func (s *LinkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.users.RemoveLink(ctx, userID, linkID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLinkNotFound
		}
		return err
	}

	s.cache.Invalidate(cacheKey(user.Username))
	return nil
}

func findLink(links []domain.Link, linkID string) (domain.Link, bool) {
	for _, link := range links {
		if link.ID == linkID {
			return link, true
		}
	}
	return domain.Link{}, false
}
