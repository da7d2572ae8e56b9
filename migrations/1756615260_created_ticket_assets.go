package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		if _, err := app.DB().NewQuery(`
			CREATE TABLE IF NOT EXISTS ticket_assets (
				id               TEXT PRIMARY KEY,
				event_id         TEXT NOT NULL,
				purchaser_id     TEXT NOT NULL,
				purchaser_name   TEXT NOT NULL DEFAULT '',
				purchaser_email  TEXT NOT NULL DEFAULT '',
				tier             TEXT NOT NULL DEFAULT '',
				purchaser_wallet TEXT NOT NULL DEFAULT '',
				owner_wallet     TEXT NOT NULL DEFAULT '',
				previous_owner   TEXT NOT NULL DEFAULT '',
				transfer_history TEXT NOT NULL DEFAULT '[]',
				platform         TEXT NOT NULL,
				contract_address TEXT NOT NULL DEFAULT '',
				token_id         TEXT NOT NULL DEFAULT '',
				token_uri        TEXT NOT NULL DEFAULT '',
				tx_ref           TEXT NOT NULL DEFAULT '',
				status           TEXT NOT NULL DEFAULT 'pending',
				error_message    TEXT NOT NULL DEFAULT '',
				retry_count      INTEGER NOT NULL DEFAULT 0,
				last_retry_at    TEXT,
				price_paid       TEXT NOT NULL DEFAULT '0',
				purchase_date    TEXT NOT NULL,
				minted_at        TEXT,
				transferred_at   TEXT
			)
		`).Execute(); err != nil {
			return err
		}

		if _, err := app.DB().NewQuery(`
			CREATE INDEX IF NOT EXISTS idx_ticket_assets_event ON ticket_assets (event_id)
		`).Execute(); err != nil {
			return err
		}
		_, err := app.DB().NewQuery(`
			CREATE INDEX IF NOT EXISTS idx_ticket_assets_purchaser ON ticket_assets (purchaser_id)
		`).Execute()
		return err
	}, func(app core.App) error {
		_, err := app.DB().NewQuery(`DROP TABLE IF EXISTS ticket_assets`).Execute()
		return err
	})
}
