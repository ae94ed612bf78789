package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/semtext/pkg/semtext/sstring"
	"github.com/cognicore/semtext/pkg/semtext/store"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS docs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	text TEXT,
	semantic_string TEXT
);

CREATE TABLE IF NOT EXISTS doc_refs (
	doc_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	ref INTEGER NOT NULL,
	weight REAL NOT NULL,
	UNIQUE(doc_id, kind, ref),
	FOREIGN KEY(doc_id) REFERENCES docs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_doc_refs_ref ON doc_refs(kind, ref);
CREATE INDEX IF NOT EXISTS idx_docs_created_at ON docs(created_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) Put(ctx context.Context, d store.Doc) (store.Doc, error) {
	d = store.Prepare(d)

	var payload []byte
	if d.SemanticString != nil {
		var err error
		payload, err = json.Marshal(d.SemanticString)
		if err != nil {
			return store.Doc{}, fmt.Errorf("encode semantic string: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Doc{}, err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO docs (id, created_at, text, semantic_string)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	text=excluded.text,
	semantic_string=excluded.semantic_string;
`
	if _, err := tx.ExecContext(ctx, stmt,
		d.ID,
		d.CreatedAt.UTC().Format(timeLayout),
		d.Text,
		nullableString(payload),
	); err != nil {
		return store.Doc{}, err
	}

	if err := replaceDocRefs(ctx, tx, d.ID, store.Refs(d.SemanticString)); err != nil {
		return store.Doc{}, err
	}

	if err := tx.Commit(); err != nil {
		return store.Doc{}, err
	}
	return d, nil
}

func replaceDocRefs(ctx context.Context, tx *sql.Tx, docID string, refs []store.Ref) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM doc_refs WHERE doc_id = ?`, docID); err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO doc_refs (doc_id, kind, ref, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range refs {
		if _, err := stmt.ExecContext(ctx, docID, string(r.Kind), r.ID, r.Weight); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (store.Doc, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, created_at, text, semantic_string FROM docs WHERE id = ?`, id)
	d, err := scanDoc(row)
	if err == sql.ErrNoRows {
		return store.Doc{}, false, nil
	}
	if err != nil {
		return store.Doc{}, false, err
	}
	return d, true, nil
}

func (s *sqliteStore) List(ctx context.Context, limit int) ([]store.Doc, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, text, semantic_string
FROM docs
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return collectDocs(rows)
}

func (s *sqliteStore) FindByConcept(ctx context.Context, id int64, limit int) ([]store.Doc, error) {
	return s.findByRef(ctx, store.RefConcept, id, limit)
}

func (s *sqliteStore) FindByEntity(ctx context.Context, id int64, limit int) ([]store.Doc, error) {
	return s.findByRef(ctx, store.RefEntity, id, limit)
}

func (s *sqliteStore) findByRef(ctx context.Context, kind store.RefKind, id int64, limit int) ([]store.Doc, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT d.id, d.created_at, d.text, d.semantic_string
FROM docs d
JOIN doc_refs r ON d.id = r.doc_id
WHERE r.kind = ? AND r.ref = ?
ORDER BY r.weight DESC, d.created_at DESC, d.id DESC
LIMIT ?;
`, string(kind), id, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return collectDocs(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDoc(row scanner) (store.Doc, error) {
	var (
		d         store.Doc
		createdAt string
		text      sql.NullString
		payload   sql.NullString
	)
	if err := row.Scan(&d.ID, &createdAt, &text, &payload); err != nil {
		return store.Doc{}, err
	}

	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return store.Doc{}, fmt.Errorf("doc %s: parse created_at: %w", d.ID, err)
	}
	d.CreatedAt = t
	d.Text = text.String

	if payload.Valid && payload.String != "" {
		var ss sstring.SemanticString
		if err := json.Unmarshal([]byte(payload.String), &ss); err != nil {
			return store.Doc{}, fmt.Errorf("doc %s: decode semantic string: %w", d.ID, err)
		}
		d.SemanticString = &ss
	}
	return d, nil
}

func collectDocs(rows *sql.Rows) ([]store.Doc, error) {
	defer rows.Close()

	var docs []store.Doc
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return store.DefaultLimit
	}
	return limit
}

func nullableString(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
