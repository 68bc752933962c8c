package chat

// Message is a role-tagged text pair in the shape completion providers
// consume. It is deliberately narrower than Turn: no hash, no embedding,
// no timestamp.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessagesFromTurns converts turns to completion messages, preserving order.
func MessagesFromTurns(turns []*Turn) []Message {
	msgs := make([]Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
