package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the activity journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			account        TEXT,
			direction      TEXT,
			stable_amount  REAL,
			oracle_rate    REAL,
			flux_influence REAL,
			protocol_rate  REAL,
			burnt_after    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_ts ON conversions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS transfers (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			from_account TEXT,
			to_account   TEXT,
			asset        TEXT,
			amount       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transfers_ts ON transfers(timestamp)`,

		`CREATE TABLE IF NOT EXISTS swaps (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			pool_id        TEXT,
			account        TEXT,
			direction      TEXT,
			amount_in      REAL,
			fee            REAL,
			amount_out     REAL,
			pegged_after   REAL,
			floating_after REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_swaps_ts ON swaps(timestamp)`,

		`CREATE TABLE IF NOT EXISTS pool_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			pool_id    TEXT,
			account    TEXT,
			event_type TEXT,
			pegged     REAL,
			floating   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pool_events_ts ON pool_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS oracle_updates (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			old_rate  REAL,
			new_rate  REAL,
			source    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_oracle_ts ON oracle_updates(timestamp)`,

		`CREATE TABLE IF NOT EXISTS supply_snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			total_stable   REAL,
			total_pegged   REAL,
			total_floating REAL,
			burnt_stable   REAL,
			protocol_rate  REAL,
			flux_ratio     REAL,
			reserve_ratio  REAL,
			flux_influence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON supply_snapshots(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordConversion(evt *ConversionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO conversions
		(timestamp, account, direction, stable_amount, oracle_rate, flux_influence, protocol_rate, burnt_after)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Account, evt.Direction, evt.StableAmount,
		evt.OracleRate, evt.FluxInfluence, evt.ProtocolRate, evt.BurntAfter,
	)
	return err
}

func (r *SQLiteRecorder) RecordTransfer(evt *TransferEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO transfers
		(timestamp, from_account, to_account, asset, amount)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.From, evt.To, string(evt.Asset), evt.Amount,
	)
	return err
}

func (r *SQLiteRecorder) RecordSwap(evt *SwapEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO swaps
		(timestamp, pool_id, account, direction, amount_in, fee, amount_out, pegged_after, floating_after)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.PoolID, evt.Account, evt.Direction,
		evt.AmountIn, evt.Fee, evt.AmountOut, evt.PeggedAfter, evt.FloatingAfter,
	)
	return err
}

func (r *SQLiteRecorder) RecordPoolEvent(evt *PoolEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO pool_events
		(timestamp, pool_id, account, event_type, pegged, floating)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.PoolID, evt.Account, evt.EventType,
		evt.Pegged, evt.Floating,
	)
	return err
}

func (r *SQLiteRecorder) RecordOracleUpdate(evt *OracleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO oracle_updates
		(timestamp, old_rate, new_rate, source)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.OldRate, evt.NewRate, evt.Source,
	)
	return err
}

func (r *SQLiteRecorder) RecordSnapshot(snap *SupplySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO supply_snapshots
		(timestamp, total_stable, total_pegged, total_floating, burnt_stable,
		 protocol_rate, flux_ratio, reserve_ratio, flux_influence)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.TotalStable, snap.TotalPegged, snap.TotalFloating,
		snap.BurntStable, snap.Rates.ProtocolRate, snap.Rates.FluxRatio,
		snap.Rates.ReserveRatio, snap.Rates.FluxInfluence,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
