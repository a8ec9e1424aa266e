package db

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"branch-api/internal/db/migrations"
)

// Migrate aplica las migraciones embebidas sobre la base indicada.
// Los índices únicos de username y email viven en el esquema: la unicidad
// se hace cumplir en la capa de almacenamiento, no en el código.
func Migrate(ctx context.Context, databaseURL string) error {
	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, conn, ".")
}
