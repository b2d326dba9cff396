package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps one row per document in the documents table. Position
// preserves collection order.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load(ctx context.Context, name string) ([]json.RawMessage, error) {
	rows := []string{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`
SELECT body FROM documents
WHERE collection = ?
ORDER BY position
`), name); err != nil {
		return nil, err
	}
	docs := make([]json.RawMessage, 0, len(rows))
	for i, body := range rows {
		if !json.Valid([]byte(body)) {
			return nil, fmt.Errorf("invalid document at position %d", i)
		}
		docs = append(docs, json.RawMessage(body))
	}
	return docs, nil
}

func (s *SQLStore) Save(ctx context.Context, name string, docs []json.RawMessage) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM documents WHERE collection = ?`), name); err != nil {
		return err
	}
	now := time.Now().UTC()
	insert := tx.Rebind(`
INSERT INTO documents (collection, position, doc_id, body, updated_at)
VALUES (?,?,?,?,?)
`)
	for i, doc := range docs {
		if _, err := tx.ExecContext(ctx, insert, name, i, documentID(doc), string(doc), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func documentID(doc json.RawMessage) *int {
	var head struct {
		ID *int `json:"id"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		return nil
	}
	return head.ID
}
