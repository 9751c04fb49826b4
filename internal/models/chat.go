package models

import "time"

// Thread is a direct conversation between users.
type Thread struct {
	ID           int64    `json:"id"`
	Status       string   `json:"status"`
	Participants []string `json:"participants"`
	LastMessage  string   `json:"last_message,omitempty"`
}

// Key returns the thread id.
func (t Thread) Key() int64 { return t.ID }

// Message is a single chat message inside a thread.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Key returns the message id.
func (m Message) Key() int64 { return m.ID }
