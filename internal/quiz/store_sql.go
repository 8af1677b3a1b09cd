package quiz

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mind-engage/quizretry/internal/session"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, id string) (*session.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM quiz_sessions WHERE id=$1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session.Unmarshal([]byte(data))
}

// Put replaces the snapshot in a single statement, so a failed write keeps
// the previous one.
func (s *SQLStore) Put(ctx context.Context, sess *session.Session) error {
	data, err := session.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quiz_sessions (id,data,updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		sess.ID, string(data), sess.UpdatedAt.Unix())
	return err
}
