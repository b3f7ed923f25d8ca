package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is the production Store implementation. Uses SQLite with
// WAL mode for concurrent read access; writes are serialized through a
// single connection to avoid SQLITE_BUSY errors.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and schema automatically; safe to call
// multiple times.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (json.RawMessage, Revision, error) {
	var body string
	var rev int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, rev FROM documents WHERE id = ?`, id,
	).Scan(&body, &rev)
	if err == sql.ErrNoRows {
		return nil, NoRevision, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, NoRevision, fmt.Errorf("get document %q: %w", id, err)
	}
	return json.RawMessage(body), revFromInt(rev), nil
}

// Save implements Store. Creates are INSERT OR IGNORE (a lost race shows
// up as zero rows affected); updates are a compare-and-swap on the rev
// column. Both paths report stale writers with a ConflictError.
func (s *SQLiteStore) Save(ctx context.Context, id, partition string, doc any, rev Revision) (Revision, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return NoRevision, fmt.Errorf("encode document %q: %w", id, err)
	}

	if rev == NoRevision {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO documents (id, partition, rev, body)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(id) DO NOTHING
		`, id, partition, string(body))
		if err != nil {
			return NoRevision, fmt.Errorf("create document %q: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return NoRevision, fmt.Errorf("create document %q: rows affected: %w", id, err)
		}
		if n == 0 {
			return NoRevision, &ConflictError{ID: id, Rev: rev}
		}
		return revFromInt(1), nil
	}

	want, err := revToInt(rev)
	if err != nil {
		return NoRevision, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET body = ?, rev = rev + 1,
		    updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND rev = ?
	`, string(body), id, want)
	if err != nil {
		return NoRevision, fmt.Errorf("update document %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NoRevision, fmt.Errorf("update document %q: rows affected: %w", id, err)
	}
	if n == 0 {
		// Either the revision is stale or the document is gone;
		// distinguish so callers can surface the right error.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE id = ?`, id,
		).Scan(&exists); err != nil {
			return NoRevision, fmt.Errorf("update document %q: %w", id, err)
		}
		if exists == 0 {
			return NoRevision, &NotFoundError{ID: id}
		}
		return NoRevision, &ConflictError{ID: id, Rev: rev}
	}
	return revFromInt(want + 1), nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string, rev Revision) error {
	want, err := revToInt(rev)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND rev = ?`, id, want,
	)
	if err != nil {
		return fmt.Errorf("delete document %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %q: rows affected: %w", id, err)
	}
	if n == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE id = ?`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("delete document %q: %w", id, err)
		}
		if exists == 0 {
			return &NotFoundError{ID: id}
		}
		return &ConflictError{ID: id, Rev: rev}
	}
	return nil
}

// QueryByPartition implements Store. Results are ordered by id so scans
// are deterministic across runs.
func (s *SQLiteStore) QueryByPartition(ctx context.Context, partition string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rev, body FROM documents
		WHERE partition = ?
		ORDER BY id ASC
	`, partition)
	if err != nil {
		return nil, fmt.Errorf("query partition %q: %w", partition, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var id, body string
		var rev int64
		if err := rows.Scan(&id, &rev, &body); err != nil {
			return nil, fmt.Errorf("query partition %q: scan: %w", partition, err)
		}
		out = append(out, Row{ID: id, Rev: revFromInt(rev), Doc: json.RawMessage(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query partition %q: %w", partition, err)
	}
	return out, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func revFromInt(n int64) Revision {
	return Revision(strconv.FormatInt(n, 10))
}

func revToInt(rev Revision) (int64, error) {
	n, err := strconv.ParseInt(string(rev), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed revision %q: %w", rev, err)
	}
	return n, nil
}
