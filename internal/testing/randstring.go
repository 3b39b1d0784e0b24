package testing

import (
	"math/rand"
	"strings"
)

const userCharSet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandString generates random string with n symbols from lower- and uppercase alphabet
func RandString(n int) string {
	var out strings.Builder
	out.Grow(n)
	for i := 0; i < n; i++ {
		out.WriteByte(userCharSet[rand.Intn(len(userCharSet))])
	}
	return out.String()
}

// RandUsers returns n distinct random user names
func RandUsers(n int) []string {
	seen := make(map[string]struct{}, n)
	users := make([]string, 0, n)
	for len(users) < n {
		u := RandString(10)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		users = append(users, u)
	}
	return users
}
