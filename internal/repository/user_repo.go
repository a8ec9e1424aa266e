package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"branch-api/internal/domain"
)

// ProfilePatch es el conjunto permitido de campos mutables de un perfil.
// Un puntero nil deja el campo tal como está.
type ProfilePatch struct {
	Name   *string
	Bio    *string
	Avatar *string
	Theme  *domain.Theme
}

// LinkPatch es la actualización parcial de un enlace.
type LinkPatch struct {
	Title *string
	URL   *string
	Icon  *string
}

// UserRepository define el contrato de persistencia para usuarios.
// Los enlaces viven embebidos en el documento del usuario: cada mutación
// de enlaces es un único UPDATE sobre la fila del dueño.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByUsernameFold(ctx context.Context, username string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error
	AppendLink(ctx context.Context, id string, link domain.Link) error
	UpdateLink(ctx context.Context, id, linkID string, link domain.Link) error
	RemoveLink(ctx context.Context, id, linkID string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, name, bio, avatar, theme, links, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, username, email, password_hash, name, bio, avatar, theme, links, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	theme, err := json.Marshal(user.Theme)
	if err != nil {
		return err
	}
	links := user.Links
	if links == nil {
		links = []domain.Link{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Bio,
		user.Avatar,
		theme,
		linksJSON,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) GetByUsernameFold(ctx context.Context, username string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return r.scanUser(r.pool.QueryRow(ctx, query, username))
}

func (r *PgUserRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) error {
	const query = `
		UPDATE users
		SET name   = COALESCE($2, name),
		    bio    = COALESCE($3, bio),
		    avatar = COALESCE($4, avatar),
		    theme  = COALESCE($5, theme)
		WHERE id = $1
	`
	var theme []byte
	if patch.Theme != nil {
		encoded, err := json.Marshal(patch.Theme)
		if err != nil {
			return err
		}
		theme = encoded
	}
	tag, err := r.pool.Exec(ctx, query, id, patch.Name, patch.Bio, patch.Avatar, theme)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) AppendLink(ctx context.Context, id string, link domain.Link) error {
	const query = `
		UPDATE users
		SET links = links || jsonb_build_array($2::jsonb)
		WHERE id = $1
	`
	encoded, err := json.Marshal(link)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, id, encoded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateLink reemplaza un enlace en una sola sentencia condicionada al dueño
// y al id del enlace; si la fila no matchea, el enlace no existe para ese
// usuario. El orden del arreglo se preserva.
func (r *PgUserRepository) UpdateLink(ctx context.Context, id, linkID string, link domain.Link) error {
	const query = `
		UPDATE users
		SET links = (
			SELECT jsonb_agg(CASE WHEN elem->>'id' = $2 THEN $3::jsonb ELSE elem END ORDER BY ord)
			FROM jsonb_array_elements(links) WITH ORDINALITY AS t(elem, ord)
		)
		WHERE id = $1
		  AND links @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`
	encoded, err := json.Marshal(link)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, id, linkID, encoded)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) RemoveLink(ctx context.Context, id, linkID string) error {
	const query = `
		UPDATE users
		SET links = COALESCE((
			SELECT jsonb_agg(elem ORDER BY ord)
			FROM jsonb_array_elements(links) WITH ORDINALITY AS t(elem, ord)
			WHERE elem->>'id' <> $2
		), '[]'::jsonb)
		WHERE id = $1
		  AND links @> jsonb_build_array(jsonb_build_object('id', $2::text))
	`
	tag, err := r.pool.Exec(ctx, query, id, linkID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUserRepository) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Bio,
		&u.Avatar,
		&u.Theme,
		&u.Links,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
