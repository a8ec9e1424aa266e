// Package migrations expone las migraciones SQL embebidas del servicio.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
