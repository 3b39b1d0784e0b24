package storage

import (
	"context"
	"errors"
	"fmt"

	"chat-inbox-server/internal/storage/zapadapter"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

var postgresSchema = []string{
	`create table if not exists message (
		id           bigserial   primary key,
		timestamp    timestamptz not null default now(),
		from_user    text        not null check (from_user <> ''),
		to_user      text        not null check (to_user <> ''),
		message_body text        not null check (message_body <> '')
	)`,
	`create index if not exists message_timestamp_idx on message (timestamp)`,
	`create index if not exists message_from_user_idx on message (from_user)`,
	`create index if not exists message_to_user_idx on message (to_user)`,
}

// PostgresStore keeps messages in a PostgreSQL database
type PostgresStore struct {
	logger *zap.SugaredLogger
	db     *pgxpool.Pool
}

// NewPostgresStore sets provided zap.Logger via zapadapter to pgxpool.Pool, creates the message table
// if absent and returns instance of PostgresStore
func NewPostgresStore(ctx context.Context, logger *zap.SugaredLogger, cfg Config, opts ...Option) (*PostgresStore, error) {
	o := applyOptions(opts)

	config, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	config.ConnConfig.Logger = zapadapter.NewLogger(logger.Desugar())
	config.ConnConfig.LogLevel = pgx.LogLevelWarn
	config.ConnConfig.ConnectTimeout = o.connectTimeout
	config.MaxConns = o.maxConns

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ConnectConfig: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, persistenceError("migrate", err)
		}
	}

	logger.Infof("Connected to postgres store at %s", config.ConnConfig.Host)

	return &PostgresStore{
		logger: logger,
		db:     pool,
	}, nil
}

// ListByParticipant returns messages where user is sender or recipient, sorted by timestamp
// (from earliest to latest)
func (s *PostgresStore) ListByParticipant(ctx context.Context, user string) ([]Message, error) {
	log := zapadapter.Sugar(ctx, s.logger)
	log.Debugf("Retrieving inbox for user (%s)", user)

	sql := `select id, timestamp, from_user, to_user, message_body
			  from message
			 where to_user = $1 or from_user = $1
			 order by timestamp asc, id asc`

	rows, err := s.db.Query(ctx, sql, user)
	if err != nil {
		return nil, persistenceError("list", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.FromUser, &m.ToUser, &m.MessageBody); err != nil {
			return nil, persistenceError("list", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, persistenceError("list", err)
	}

	log.Debugf("Retrieved %d messages", len(messages))

	return messages, nil
}

// Insert creates new message and returns it with the assigned id
func (s *PostgresStore) Insert(ctx context.Context, m Message) (Message, error) {
	log := zapadapter.Sugar(ctx, s.logger)
	log.Debugf("Creating message from user (%s) to user (%s)", m.FromUser, m.ToUser)

	m = normalize(m)

	sql := "insert into message (timestamp, from_user, to_user, message_body) values ($1, $2, $3, $4) returning id"
	if err := s.db.QueryRow(ctx, sql, m.Timestamp, m.FromUser, m.ToUser, m.MessageBody).Scan(&m.ID); err != nil {
		return Message{}, persistenceError("insert", err)
	}

	log.Debugf("Created message with id %d", m.ID)

	return m, nil
}

// DeleteByID looks up the message with id and removes it in one transaction
func (s *PostgresStore) DeleteByID(ctx context.Context, id int64) error {
	log := zapadapter.Sugar(ctx, s.logger)
	log.Debugf("Deleting message (id: %d)", id)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return persistenceError("delete", err)
	}
	// error handling can be omitted for rollback according docs
	// see https://pkg.go.dev/github.com/jackc/pgx/v4?tab=doc#hdr-Transactions
	defer tx.Rollback(context.Background())

	rows, err := tx.Query(ctx, "select id from message where id = $1 for update", id)
	if err != nil {
		return persistenceError("delete", err)
	}
	n := 0
	for rows.Next() {
		n++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return persistenceError("delete", err)
	}

	if err := exactlyOne(n); err != nil {
		return fmt.Errorf("message %d: %w", id, err)
	}

	if _, err := tx.Exec(ctx, "delete from message where id = $1", id); err != nil {
		return persistenceError("delete", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return persistenceError("delete", err)
	}

	log.Debugf("Deleted message (id: %d)", id)

	return nil
}

// Close closes all connections in the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

// persistenceError wraps err, naming the violated constraint for integrity errors
func persistenceError(op string, err error) *PersistenceError {
	pe := &PersistenceError{Op: op, Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		pe.Constraint = pgErr.ConstraintName
	}

	return pe
}
