// Package model holds the domain entities synchronized between the remote
// service and the local cache. Entities are values: they are replaced, never
// mutated in place, and refer to each other by id only.
package model

import (
	"strings"
	"time"
)

// Kind names an entity type. It doubles as the cache partition key.
type Kind string

const (
	KindUser         Kind = "user"
	KindSetting      Kind = "setting"
	KindConversation Kind = "conversation"
	KindChat         Kind = "chat"
	KindJournal      Kind = "journal"
)

// User is the signed-in account. At most one is cached.
type User struct {
	ID           int64  `json:"userID"`
	Email        string `json:"email"`
	Nickname     string `json:"nickName"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Token        string `json:"token,omitempty"`
}

func (u User) Key() int64 { return u.ID }
func (u User) WithKey(id int64) User { u.ID = id; return u }
func (u User) ParentKey() int64 { return 0 }
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Nickname) != "" {
		return u.Nickname
	}
	return u.Email
}

// Setting holds per-user preferences delivered with the auth response.
type Setting struct {
	ID                int64  `json:"settingID"`
	UserID            int64  `json:"userID"`
	Language          string `json:"language,omitempty"`
	DarkMode          bool   `json:"darkMode"`
	IsCompleteProfile bool   `json:"isCompleteProfile"`
}

func (s Setting) Key() int64 { return s.ID }
func (s Setting) WithKey(id int64) Setting { s.ID = id; return s }
func (s Setting) ParentKey() int64 { return s.UserID }

// Conversation is a chat thread.
type Conversation struct {
	ID          int64     `json:"conversationID"`
	Name        string    `json:"conversationName"`
	DateCreated time.Time `json:"dateCreated"`
}

func (c Conversation) Key() int64 { return c.ID }
func (c Conversation) WithKey(id int64) Conversation { c.ID = id; return c }
func (c Conversation) ParentKey() int64 { return 0 }

// SendState tracks an outgoing chat message.
type SendState string

const (
	SendStateNone    SendState = ""
	SendStateSending SendState = "being_sent"
	SendStateFailed  SendState = "error_while_sending"
)

// Chat is one message of a conversation.
type Chat struct {
	ID             int64     `json:"chatID"`
	ConversationID int64     `json:"conversationID"`
	Message        string    `json:"message"`
	Sequence       int       `json:"chatsequence"`
	IsUserMessage  bool      `json:"isUserMessage"`
	SendState      SendState `json:"sendState,omitempty"`
}

func (c Chat) Key() int64 { return c.ID }
func (c Chat) WithKey(id int64) Chat { c.ID = id; return c }
func (c Chat) ParentKey() int64 { return c.ConversationID }

// Journal is a diary entry.
type Journal struct {
	ID          int64     `json:"DiaryID"`
	UserID      int64     `json:"UserID"`
	Name        string    `json:"DiaryName"`
	Message     string    `json:"DiaryMessage"`
	MoodID      int       `json:"MoodID"`
	Summary     string    `json:"Summary,omitempty"`
	DateCreated time.Time `json:"DateCreated"`
}

func (j Journal) Key() int64 { return j.ID }
func (j Journal) WithKey(id int64) Journal { j.ID = id; return j }
func (j Journal) ParentKey() int64 { return j.UserID }

// DateKey formats t the way journal-by-date lookups address a day.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// SameDay reports whether the journal was written on the given day.
func (j Journal) SameDay(day time.Time) bool {
	return DateKey(j.DateCreated) == DateKey(day)
}
