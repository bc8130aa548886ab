package handicapmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating handicap tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS handicap_players (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(100) NOT NULL UNIQUE,
					initial_index DOUBLE PRECISION NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create handicap_players table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS handicap_rounds (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					round_key VARCHAR(32) NOT NULL UNIQUE,
					played_on DATE NOT NULL,
					variant VARCHAR(16) NOT NULL DEFAULT '',
					nine VARCHAR(32) NOT NULL,
					source VARCHAR(32) NOT NULL DEFAULT 'manual',
					handicap_eligible BOOLEAN NOT NULL DEFAULT TRUE,
					tee_time TIMESTAMPTZ,
					pcc SMALLINT CHECK (pcc BETWEEN -1 AND 1),
					weather_factor DOUBLE PRECISION CHECK (weather_factor > 0),
					temp_c DOUBLE PRECISION,
					wind_kmh DOUBLE PRECISION,
					rain_mm DOUBLE PRECISION,
					conditions TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT chk_handicap_rounds_adjustment CHECK (pcc IS NULL OR weather_factor IS NULL)
				);
				CREATE INDEX IF NOT EXISTS idx_handicap_rounds_played_on ON handicap_rounds(played_on);
			`); err != nil {
				return fmt.Errorf("failed to create handicap_rounds table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS handicap_round_scores (
					id BIGSERIAL PRIMARY KEY,
					round_uuid UUID NOT NULL REFERENCES handicap_rounds(uuid) ON DELETE CASCADE,
					player VARCHAR(100) NOT NULL,
					gross INTEGER NOT NULL,
					holes INTEGER[],
					index_at_time DOUBLE PRECISION NOT NULL,
					course_handicap INTEGER NOT NULL,
					adjusted_gross INTEGER,
					differential DOUBLE PRECISION,
					stableford INTEGER NOT NULL DEFAULT 0,
					stableford_holes INTEGER[],
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (round_uuid, player)
				);
				CREATE INDEX IF NOT EXISTS idx_handicap_round_scores_player ON handicap_round_scores(player);
			`); err != nil {
				return fmt.Errorf("failed to create handicap_round_scores table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping handicap tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"handicap_round_scores", "handicap_rounds", "handicap_players"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+";"); err != nil {
					return fmt.Errorf("failed to drop %s: %w", table, err)
				}
			}
			return nil
		})
	})
}
