package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chat-inbox-server/internal/storage/zapadapter"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// timestamps are stored as fixed-width UTC text so that lexical order is chronological order
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

var sqliteSchema = []string{
	`create table if not exists message (
		id           integer primary key autoincrement,
		timestamp    text    not null,
		from_user    text    not null,
		to_user      text    not null,
		message_body text    not null
	)`,
	`create index if not exists message_timestamp_idx on message (timestamp)`,
	`create index if not exists message_from_user_idx on message (from_user)`,
	`create index if not exists message_to_user_idx on message (to_user)`,
}

// SQLiteStore keeps messages in an embedded database file
type SQLiteStore struct {
	logger *zap.SugaredLogger
	db     *sql.DB
}

// NewSQLiteStore opens cfg.SQLitePath, creating the file and the message table if absent
func NewSQLiteStore(ctx context.Context, logger *zap.SugaredLogger, cfg Config, opts ...Option) (*SQLiteStore, error) {
	o := applyOptions(opts)

	db, err := sql.Open("sqlite", cfg.SQLiteDSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// a single connection serializes writers, sqlite allows only one at a time anyway
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, o.connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, &PersistenceError{Op: "migrate", Err: err}
		}
	}

	logger.Infof("Opened sqlite store at %s", cfg.SQLitePath)

	return &SQLiteStore{
		logger: logger,
		db:     db,
	}, nil
}

// ListByParticipant returns messages where user is sender or recipient, sorted by timestamp
// (from earliest to latest)
func (s *SQLiteStore) ListByParticipant(ctx context.Context, user string) ([]Message, error) {
	log := zapadapter.Sugar(ctx, s.logger)
	log.Debugf("Retrieving inbox for user (%s)", user)

	query := `select id, timestamp, from_user, to_user, message_body
				from message
			   where to_user = ? or from_user = ?
			   order by timestamp asc, id asc`

	rows, err := s.db.QueryContext(ctx, query, user, user)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var (
			m  Message
			ts string
		)
		if err := rows.Scan(&m.ID, &ts, &m.FromUser, &m.ToUser, &m.MessageBody); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		m.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
		if err != nil {
			return nil, &PersistenceError{Op: "list", Err: fmt.Errorf("message %d: %w", m.ID, err)}
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	log.Debugf("Retrieved %d messages", len(messages))

	return messages, nil
}

// Insert creates new message and returns it with the assigned id
func (s *SQLiteStore) Insert(ctx context.Context, m Message) (Message, error) {
	log := zapadapter.Sugar(ctx, s.logger)
	log.Debugf("Creating message from user (%s) to user (%s)", m.FromUser, m.ToUser)

	m = normalize(m)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Message{}, &PersistenceError{Op: "insert", Err: err}
	}
	// rollback after a successful commit is a no-op returning sql.ErrTxDone
	defer tx.Rollback()

	query := "insert into message (timestamp, from_user, to_user, message_body) values (?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, query, m.Timestamp.Format(sqliteTimeLayout), m.FromUser, m.ToUser, m.MessageBody)
	if err != nil {
		return Message{}, &PersistenceError{Op: "insert", Err: err}
	}

	m.ID, err = res.LastInsertId()
	if err != nil {
		return Message{}, &PersistenceError{Op: "insert", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Message{}, &PersistenceError{Op: "insert", Err: err}
	}

	log.Debugf("Created message with id %d", m.ID)

	return m, nil
}

// DeleteByID looks up the message with id and removes it in one transaction
func (s *SQLiteStore) DeleteByID(ctx context.Context, id int64) error {
	log := zapadapter.Sugar(ctx, s.logger)
	log.Debugf("Deleting message (id: %d)", id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "select id from message where id = ?", id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return &PersistenceError{Op: "delete", Err: err}
	}
	rows.Close()

	if err := exactlyOne(n); err != nil {
		return fmt.Errorf("message %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, "delete from message where id = ?", id); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	log.Debugf("Deleted message (id: %d)", id)

	return nil
}

// Close closes the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
