package handicapmigrations

import (
	"context"
	"fmt"

	handicapdomain "github.com/Black-And-White-Club/handicap-bot/app/modules/handicap/domain"
	"github.com/uptrace/bun"
)

// legacyNineLabels are the nine labels written by the first importer. They
// were swapped relative to the physical holes.
var legacyNineLabels = []string{"front9", "back9"}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Relabelling legacy nines to hole ranges...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, label := range legacyNineLabels {
				nine, err := handicapdomain.NineFromLegacyLabel(label)
				if err != nil {
					return err
				}
				res, err := tx.ExecContext(ctx,
					`UPDATE handicap_rounds SET nine = ?, updated_at = NOW() WHERE nine = ?`,
					string(nine), label)
				if err != nil {
					return fmt.Errorf("failed to relabel %s rounds: %w", label, err)
				}
				if n, err := res.RowsAffected(); err == nil {
					fmt.Printf("  %s -> %s: %d rounds\n", label, nine, n)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		// The original labels were wrong, so there is nothing to restore.
		fmt.Println("Legacy nine relabel has no rollback")
		return nil
	})
}
