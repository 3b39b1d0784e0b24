package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversations(t *testing.T) {
	pairs := Conversations([]string{"a", "b", "c", "d"})
	require.Equal(t, []Conversation{{"a", "b"}, {"c", "a"}, {"a", "d"}}, pairs)
}

func TestConversationsTooFewUsers(t *testing.T) {
	require.Nil(t, Conversations([]string{"a"}))
	require.Nil(t, Conversations(nil))
}

func TestRandUsersDistinct(t *testing.T) {
	users := RandUsers(20)
	require.Len(t, users, 20)

	seen := map[string]bool{}
	for _, u := range users {
		require.Len(t, u, 10)
		require.False(t, seen[u])
		seen[u] = true
	}
}
