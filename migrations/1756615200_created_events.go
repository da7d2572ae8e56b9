package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		_, err := app.DB().NewQuery(`
			CREATE TABLE IF NOT EXISTS events (
				id                TEXT PRIMARY KEY,
				name              TEXT NOT NULL,
				description       TEXT NOT NULL DEFAULT '',
				venue             TEXT NOT NULL DEFAULT '',
				start_time        TEXT NOT NULL,
				end_time          TEXT NOT NULL,
				status            TEXT NOT NULL DEFAULT 'draft',
				resale_locked     BOOLEAN NOT NULL DEFAULT FALSE,
				transfer_deadline TEXT,
				max_resale_price  TEXT
			)
		`).Execute()
		return err
	}, func(app core.App) error {
		_, err := app.DB().NewQuery(`DROP TABLE IF EXISTS events`).Execute()
		return err
	})
}
