package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		_, err := app.DB().NewQuery(`
			CREATE TABLE IF NOT EXISTS minting_configs (
				event_id            TEXT PRIMARY KEY,
				nft_enabled         BOOLEAN NOT NULL DEFAULT FALSE,
				preferred_platform  TEXT NOT NULL DEFAULT 'polygon',
				allow_transfer      BOOLEAN NOT NULL DEFAULT TRUE,
				burn_after_event    BOOLEAN NOT NULL DEFAULT FALSE,
				auto_mint           BOOLEAN NOT NULL DEFAULT FALSE,
				contract_address    TEXT NOT NULL DEFAULT '',
				contract_name       TEXT NOT NULL DEFAULT '',
				contract_symbol     TEXT NOT NULL DEFAULT '',
				base_token_uri      TEXT NOT NULL DEFAULT '',
				royalty_percentage  TEXT,
				royalty_recipient   TEXT NOT NULL DEFAULT '',
				organizer_wallet    TEXT NOT NULL DEFAULT '',
				max_retries         INTEGER NOT NULL DEFAULT 3,
				retry_delay_seconds INTEGER NOT NULL DEFAULT 300,
				created_at          TEXT NOT NULL,
				updated_at          TEXT NOT NULL
			)
		`).Execute()
		return err
	}, func(app core.App) error {
		_, err := app.DB().NewQuery(`DROP TABLE IF EXISTS minting_configs`).Execute()
		return err
	})
}
