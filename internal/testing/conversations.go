package testing

// Conversation is a sender/recipient pair
type Conversation struct {
	From, To string
}

// Conversations pairs the first provided user with each of the others, alternating direction
// e.g. [a, b, c, d] -> [a->b, c->a, a->d]
func Conversations(users []string) []Conversation {
	if len(users) < 2 {
		return nil
	}

	pairs := make([]Conversation, 0, len(users)-1)
	for i := 1; i < len(users); i++ {
		if i%2 == 1 {
			pairs = append(pairs, Conversation{From: users[0], To: users[i]})
		} else {
			pairs = append(pairs, Conversation{From: users[i], To: users[0]})
		}
	}

	return pairs
}
