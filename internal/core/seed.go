package core

import "time"

// SeedMessage is a pre-populated message whose timestamp is relative to bus construction.
type SeedMessage struct {
	ID       string
	Text     string
	Username string
	Room     string
	Age      time.Duration
}

// Seed is the initial roster, history and synthetic phrase pool of a bus.
type Seed struct {
	Users    []User
	Messages []SeedMessage
	Phrases  []string
}

// DefaultRooms is the room set used when none is configured.
var DefaultRooms = []string{"general", "random", "tech", "support"}

// DefaultRoom is the room a fresh bus starts in.
const DefaultRoom = "general"

// DefaultSeed returns the demo roster and history.
func DefaultSeed() Seed {
	return Seed{
		Users: []User{
			{ID: SystemUserID, Username: "System"},
			{ID: "user1", Username: "Alice"},
			{ID: "user2", Username: "Bob"},
			{ID: "user3", Username: "Charlie"},
		},
		Messages: []SeedMessage{
			{ID: "1", Text: "Welcome to the chat!", Username: "System", Room: "general", Age: 5000 * time.Second},
			{ID: "2", Text: "Hey everyone!", Username: "Alice", Room: "general", Age: 4000 * time.Second},
			{ID: "3", Text: "Hi Alice, how are you today?", Username: "Bob", Room: "general", Age: 3000 * time.Second},
			{ID: "4", Text: "I'm doing great, thanks for asking!", Username: "Alice", Room: "general", Age: 2000 * time.Second},
			{ID: "5", Text: "Anyone working on something interesting?", Username: "Charlie", Room: "random", Age: 1000 * time.Second},
			{ID: "6", Text: "I'm learning about WebSockets!", Username: "Alice", Room: "tech", Age: 800 * time.Second},
			{ID: "7", Text: "Has anyone encountered this error in React?", Username: "Bob", Room: "support", Age: 500 * time.Second},
		},
		Phrases: DefaultPhrases(),
	}
}

// DefaultPhrases is the pool synthetic messages draw their text from.
func DefaultPhrases() []string {
	return []string{
		"Hey, how's it going?",
		"Anyone here?",
		"Just joined to say hi!",
		"Interesting discussion!",
		"I have a question about this topic.",
		"Great to see everyone here!",
		"What do you all think about the new features?",
		"I'm working on a similar project right now.",
		"Has anyone tried the latest update?",
		"Happy to be part of this chat!",
	}
}

func (s Seed) materialize(now time.Time) ([]User, []Message) {
	users := make([]User, len(s.Users))
	copy(users, s.Users)

	messages := make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, Message{
			ID:        m.ID,
			Text:      m.Text,
			Username:  m.Username,
			Room:      m.Room,
			Timestamp: now.Add(-m.Age).UnixMilli(),
		})
	}
	return users, messages
}
