package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("message does not exist")
	ErrAmbiguous     = errors.New("more than one message matches id")
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Message is a single persisted message row
type Message struct {
	ID          int64
	Timestamp   time.Time
	FromUser    string
	ToUser      string
	MessageBody string
}

// Store defines operations over the message table
type Store interface {
	// ListByParticipant returns every message sent or received by user, oldest first
	ListByParticipant(ctx context.Context, user string) ([]Message, error)
	// Insert persists m with a freshly assigned id and returns the stored row
	Insert(ctx context.Context, m Message) (Message, error)
	// DeleteByID removes exactly one message or fails with ErrNotFound / ErrAmbiguous
	DeleteByID(ctx context.Context, id int64) error
	Close() error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// PersistenceError reports a failed write or read against the backend
type PersistenceError struct {
	Op         string
	Constraint string
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("storage: %s: violates constraint %s: %v", e.Op, e.Constraint, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// New opens the store selected by cfg.Driver and makes sure the schema exists
func New(ctx context.Context, logger *zap.SugaredLogger, cfg Config, opts ...Option) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return NewSQLiteStore(ctx, logger, cfg, opts...)
	case DriverPostgres:
		return NewPostgresStore(ctx, logger, cfg, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// normalize fills the default timestamp and drops precision both backends cannot keep
func normalize(m Message) Message {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	m.Timestamp = m.Timestamp.UTC().Truncate(time.Microsecond)
	return m
}

// exactlyOne maps the number of rows matched by an id lookup onto the lookup contract
func exactlyOne(n int) error {
	switch {
	case n == 0:
		return ErrNotFound
	case n > 1:
		return ErrAmbiguous
	default:
		return nil
	}
}
