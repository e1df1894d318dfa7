// internal/delivery/store.go
//
// Store target: one audit row per delivered event.
//
// Context
//   Rows are written with sqlx named parameters, which the mysql bindvar
//   rewrites to "?".  The webhook URL carries a secret token in its path, so
//   only the host is stored.
//
//   The row id is the delivery id.  A duplicate-key error therefore means
//   this draft is already recorded and counts as success.
//
//   Expected schema:
//
//     CREATE TABLE event_delivery (
//       id           CHAR(36)     PRIMARY KEY,
//       source_id    VARCHAR(255) NOT NULL,
//       webhook_host VARCHAR(255) NOT NULL,
//       message      TEXT         NOT NULL,
//       delivered_at DATETIME(6)  NOT NULL
//     );
//
//------------------------------------------------------------------------------

package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/eventform/internal/config"
	"github.com/yanizio/eventform/internal/event"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "event_delivery"

type storeRow struct {
	ID          string    `db:"id"`
	SourceID    string    `db:"source_id"`
	WebhookHost string    `db:"webhook_host"`
	Message     string    `db:"message"`
	DeliveredAt time.Time `db:"delivered_at"`
}

// Store writes events to a SQL table.
type Store struct {
	db    *sqlx.DB
	query string
	now   func() time.Time
}

// NewStore validates table and prepares the insert statement text.
func NewStore(db *sqlx.DB, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if !config.ValidIdent(table) {
		return nil, fmt.Errorf("store: invalid table name %q", table)
	}
	return &Store{
		db: db,
		query: fmt.Sprintf(`INSERT INTO %s (id, source_id, webhook_host, message, delivered_at) `+
			`VALUES (:id, :source_id, :webhook_host, :message, :delivered_at)`, table),
		now: time.Now,
	}, nil
}

// Deliver implements Deliverer.
func (s *Store) Deliver(ctx context.Context, ev event.DraftEvent) error {
	row := storeRow{
		ID:          idOrNew(ctx),
		SourceID:    ev.SourceID,
		WebhookHost: webhookHost(ev.WebhookURL),
		Message:     ev.Message,
		DeliveredAt: s.now().UTC(),
	}
	if _, err := s.db.NamedExecContext(ctx, s.query, row); err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return AsError("store", err)
	}
	return nil
}

// erDupEntry is MySQL's ER_DUP_ENTRY.
const erDupEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}
