package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
)

// MySQLSchema creates the single table every collection shares. seq keeps
// insertion order; the body column holds the document without its id.
const MySQLSchema = `CREATE TABLE IF NOT EXISTS documents (
	seq        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	collection VARCHAR(64)     NOT NULL,
	id         CHAR(36)        NOT NULL,
	body       JSON            NOT NULL,
	created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_documents_collection_id (collection, id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// MySQLStore keeps documents as JSON rows in MySQL.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Migrate creates the documents table if it does not exist yet.
func (s *MySQLStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, MySQLSchema)
	return wrap("migrate", "documents", err)
}

// Insert implements Store.
func (s *MySQLStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	body, err := json.Marshal(withoutID(doc))
	if err != nil {
		return "", wrap("insert", collection, err)
	}
	id := uuid.NewString()
	const q = "INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)"
	if _, err := s.db.ExecContext(ctx, q, collection, id, body); err != nil {
		return "", wrap("insert", collection, err)
	}
	return id, nil
}

// Get implements Store.
func (s *MySQLStore) Get(ctx context.Context, collection, id string) (Document, error) {
	const q = "SELECT body FROM documents WHERE collection = ? AND id = ? LIMIT 1"
	var body []byte
	if err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, wrap("get", collection, err)
	}
	doc, err := decodeRow(id, body)
	return doc, wrap("get", collection, err)
}

// Find implements Store. Each filter clause becomes a JSON_CONTAINS test,
// which matches scalars by equality and arrays by membership.
func (s *MySQLStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	q := "SELECT id, body FROM documents WHERE collection = ?"
	args := []any{collection}
	for field, want := range filter {
		candidate, err := json.Marshal(want)
		if err != nil {
			return nil, wrap("find", collection, err)
		}
		q += " AND JSON_CONTAINS(body, CAST(? AS JSON), ?)"
		args = append(args, string(candidate), "$."+strconv.Quote(field))
	}
	q += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("find", collection, err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, wrap("find", collection, err)
		}
		doc, err := decodeRow(id, body)
		if err != nil {
			return nil, wrap("find", collection, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("find", collection, err)
	}
	return out, nil
}

// Update implements Store. JSON_MERGE_PATCH applies the partial document in
// one statement, so concurrent updates to the same row never interleave.
func (s *MySQLStore) Update(ctx context.Context, collection, id string, partial Document) error {
	patch, err := json.Marshal(withoutID(partial))
	if err != nil {
		return wrap("update", collection, err)
	}
	const q = `UPDATE documents
	           SET body = JSON_MERGE_PATCH(body, CAST(? AS JSON))
	           WHERE collection = ? AND id = ?`
	res, err := s.db.ExecContext(ctx, q, string(patch), collection, id)
	if err != nil {
		return wrap("update", collection, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// MySQL reports zero affected rows when the patch changes nothing, so
	// tell "unchanged" apart from "missing".
	return s.exists(ctx, "update", collection, id)
}

// Delete implements Store.
func (s *MySQLStore) Delete(ctx context.Context, collection, id string) error {
	const q = "DELETE FROM documents WHERE collection = ? AND id = ?"
	res, err := s.db.ExecContext(ctx, q, collection, id)
	if err != nil {
		return wrap("delete", collection, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQLStore) exists(ctx context.Context, op, collection, id string) error {
	const q = "SELECT 1 FROM documents WHERE collection = ? AND id = ? LIMIT 1"
	var one int
	if err := s.db.QueryRowContext(ctx, q, collection, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return wrap(op, collection, err)
	}
	return nil
}

func decodeRow(id string, body []byte) (Document, error) {
	doc, err := DecodeJSON(body)
	if err != nil {
		return nil, err
	}
	doc[IDField] = id
	return doc, nil
}
