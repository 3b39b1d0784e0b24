// Package inbox implements the message operations exposed over HTTP: listing a user's inbox,
// sending a message and deleting one. It translates between wire values and storage rows.
package inbox

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"chat-inbox-server/internal/storage"
	"chat-inbox-server/internal/storage/zapadapter"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Acknowledgement is returned to the sender of a successfully stored message
const Acknowledgement = "Message Sent Successfully."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// MessageView is the JSON shape of a message
type MessageView struct {
	ID          int64  `json:"id"`
	Timestamp   string `json:"timestamp"`
	FromUser    string `json:"fromUser"`
	ToUser      string `json:"toUser"`
	MessageBody string `json:"messageBody"`
}

// NewMessage holds the fields accepted when sending a message.
// A zero Timestamp means "now".
type NewMessage struct {
	FromUser    string    `json:"fromUser" validate:"required"`
	ToUser      string    `json:"toUser" validate:"required"`
	MessageBody string    `json:"messageBody" validate:"required"`
	Timestamp   time.Time `json:"timestamp"`
}

// Service runs inbox operations against a storage.Store
type Service struct {
	logger *zap.SugaredLogger
	store  storage.Store
}

func NewService(logger *zap.SugaredLogger, store storage.Store) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// ListInbox returns every message user sent or received, oldest first
func (s *Service) ListInbox(ctx context.Context, user string) ([]MessageView, error) {
	messages, err := s.store.ListByParticipant(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list inbox of %q: %w", user, err)
	}

	return lo.Map(messages, func(m storage.Message, _ int) MessageView {
		return toView(m)
	}), nil
}

// CreateMessage validates and stores msg. Only the acknowledgement is returned, never the record.
func (s *Service) CreateMessage(ctx context.Context, msg NewMessage) (string, error) {
	if err := validate.Struct(msg); err != nil {
		return "", validationError(err)
	}

	m, err := s.store.Insert(ctx, storage.Message{
		Timestamp:   msg.Timestamp,
		FromUser:    msg.FromUser,
		ToUser:      msg.ToUser,
		MessageBody: msg.MessageBody,
	})
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	zapadapter.Sugar(ctx, s.logger).Infof("Message %d sent from %s to %s", m.ID, m.FromUser, m.ToUser)

	return Acknowledgement, nil
}

// DeleteMessage removes the message identified by rawID.
// An id that is not an integer names no message and yields storage.ErrNotFound.
func (s *Service) DeleteMessage(ctx context.Context, rawID string) (bool, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("message id %q: %w", rawID, storage.ErrNotFound)
	}

	if err := s.store.DeleteByID(ctx, id); err != nil {
		return false, fmt.Errorf("delete message: %w", err)
	}

	zapadapter.Sugar(ctx, s.logger).Infof("Message %d deleted", id)

	return true, nil
}

func toView(m storage.Message) MessageView {
	return MessageView{
		ID:          m.ID,
		Timestamp:   FormatTimestamp(m.Timestamp),
		FromUser:    m.FromUser,
		ToUser:      m.ToUser,
		MessageBody: m.MessageBody,
	}
}
