package inbox

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"chat-inbox-server/internal/storage"
	mytesting "chat-inbox-server/internal/testing"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func bootstrapService(t *testing.T) *Service {
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	store, err := storage.NewSQLiteStore(context.Background(), logger.Sugar(),
		storage.Config{SQLitePath: filepath.Join(t.TempDir(), "chat.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewService(logger.Sugar(), store)
}

func TestCreateAndListInbox(t *testing.T) {
	s := bootstrapService(t)
	users := mytesting.RandUsers(3)

	ack, err := s.CreateMessage(context.Background(), NewMessage{FromUser: users[0], ToUser: users[1], MessageBody: "hi"})
	require.NoError(t, err)
	require.Equal(t, Acknowledgement, ack)

	_, err = s.CreateMessage(context.Background(), NewMessage{FromUser: users[1], ToUser: users[0], MessageBody: "hello"})
	require.NoError(t, err)
	_, err = s.CreateMessage(context.Background(), NewMessage{FromUser: users[2], ToUser: users[2], MessageBody: "note to self"})
	require.NoError(t, err)

	for _, user := range users[:2] {
		views, err := s.ListInbox(context.Background(), user)
		require.NoError(t, err)
		require.Len(t, views, 2)
		require.Equal(t, "hi", views[0].MessageBody)
		require.Equal(t, users[0], views[0].FromUser)
		require.Equal(t, users[1], views[0].ToUser)
		require.Equal(t, "hello", views[1].MessageBody)
		require.Less(t, views[0].ID, views[1].ID)
		require.LessOrEqual(t, views[0].Timestamp, views[1].Timestamp)
	}

	views, err := s.ListInbox(context.Background(), users[2])
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestListInboxEmptyIsNotNil(t *testing.T) {
	s := bootstrapService(t)

	views, err := s.ListInbox(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, views)
	require.Empty(t, views)
}

func TestCreateMessageWithTimestamp(t *testing.T) {
	s := bootstrapService(t)
	ts := time.Date(2018, 1, 30, 9, 15, 0, 0, time.UTC)

	_, err := s.CreateMessage(context.Background(), NewMessage{FromUser: "alice", ToUser: "bob", MessageBody: "hi", Timestamp: ts})
	require.NoError(t, err)

	views, err := s.ListInbox(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "2018-01-30 09:15:00", views[0].Timestamp)
}

func TestCreateMessageValidation(t *testing.T) {
	s := bootstrapService(t)

	tests := []struct {
		name  string
		msg   NewMessage
		field string
	}{
		{"NoFromUser", NewMessage{ToUser: "bob", MessageBody: "hi"}, "fromUser"},
		{"NoToUser", NewMessage{FromUser: "alice", MessageBody: "hi"}, "toUser"},
		{"NoMessageBody", NewMessage{FromUser: "alice", ToUser: "bob"}, "messageBody"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateMessage(context.Background(), tt.msg)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Equal(t, tt.field, vErr.Field)
			require.Equal(t, `Field "`+tt.field+`" must be a string and have non-zero length`, vErr.Error())
		})
	}

	views, err := s.ListInbox(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, views)
}

func TestDeleteMessage(t *testing.T) {
	s := bootstrapService(t)

	_, err := s.CreateMessage(context.Background(), NewMessage{FromUser: "alice", ToUser: "bob", MessageBody: "first"})
	require.NoError(t, err)
	_, err = s.CreateMessage(context.Background(), NewMessage{FromUser: "alice", ToUser: "bob", MessageBody: "second"})
	require.NoError(t, err)

	views, err := s.ListInbox(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, views, 2)

	ok, err := s.DeleteMessage(context.Background(), strconv.FormatInt(views[0].ID, 10))
	require.NoError(t, err)
	require.True(t, ok)

	for _, user := range []string{"alice", "bob"} {
		left, err := s.ListInbox(context.Background(), user)
		require.NoError(t, err)
		require.Len(t, left, 1)
		require.Equal(t, views[1], left[0])
	}
}

func TestDeleteMessageNotFound(t *testing.T) {
	s := bootstrapService(t)

	for _, raw := range []string{"42", "abc", "", "-1"} {
		ok, err := s.DeleteMessage(context.Background(), raw)
		require.False(t, ok)
		require.True(t, errors.Is(err, storage.ErrNotFound), "id %q: %v", raw, err)
	}
}
