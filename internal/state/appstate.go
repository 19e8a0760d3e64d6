package state

import (
	"time"

	"github.com/five82/ava/internal/loadable"
	"github.com/five82/ava/internal/model"
)

// AppState is the root of all observable client state.
type AppState struct {
	UserData         UserData
	ConversationData ConversationData
	ChatData         ChatData
	JournalData      JournalData
	System           System
}

// UserData holds the signed-in user and their settings.
type UserData struct {
	User    loadable.Loadable[model.User]
	Setting loadable.Loadable[model.Setting]
}

// ConversationData holds the conversation list.
type ConversationData struct {
	Conversations loadable.Loadable[[]model.Conversation]
}

// ChatData holds one chat list per conversation id.
type ChatData struct {
	Chats map[int64]loadable.Loadable[[]model.Chat]
}

// JournalData holds the journal list and the result of the last by-date lookup.
type JournalData struct {
	Journals loadable.Loadable[[]model.Journal]
	ByDate   loadable.Loadable[[]model.Journal]
}

// System tracks background refresh health.
type System struct {
	Active              bool
	LastError           error
	LastRefresh         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when the remote service has been unreachable for
// multiple refreshes.
func (s System) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// NewAppState returns a root with every map section initialized.
func NewAppState() AppState {
	return AppState{
		ChatData: ChatData{Chats: make(map[int64]loadable.Loadable[[]model.Chat])},
	}
}

// Well-known paths into AppState.
var (
	UserDataPath = Field(Root(), "userData",
		func(a AppState) UserData { return a.UserData },
		func(a *AppState, v UserData) { a.UserData = v })
	UserPath = Field(UserDataPath, "user",
		func(u UserData) loadable.Loadable[model.User] { return u.User },
		func(u *UserData, v loadable.Loadable[model.User]) { u.User = v })
	SettingPath = Field(UserDataPath, "setting",
		func(u UserData) loadable.Loadable[model.Setting] { return u.Setting },
		func(u *UserData, v loadable.Loadable[model.Setting]) { u.Setting = v })

	ConversationDataPath = Field(Root(), "conversationData",
		func(a AppState) ConversationData { return a.ConversationData },
		func(a *AppState, v ConversationData) { a.ConversationData = v })
	ConversationsPath = Field(ConversationDataPath, "conversations",
		func(c ConversationData) loadable.Loadable[[]model.Conversation] { return c.Conversations },
		func(c *ConversationData, v loadable.Loadable[[]model.Conversation]) { c.Conversations = v })

	ChatDataPath = Field(Root(), "chatData",
		func(a AppState) ChatData { return a.ChatData },
		func(a *AppState, v ChatData) { a.ChatData = v })
	ChatsPath = Field(ChatDataPath, "chats",
		func(c ChatData) map[int64]loadable.Loadable[[]model.Chat] { return c.Chats },
		func(c *ChatData, v map[int64]loadable.Loadable[[]model.Chat]) { c.Chats = v })

	JournalDataPath = Field(Root(), "journalData",
		func(a AppState) JournalData { return a.JournalData },
		func(a *AppState, v JournalData) { a.JournalData = v })
	JournalsPath = Field(JournalDataPath, "journals",
		func(j JournalData) loadable.Loadable[[]model.Journal] { return j.Journals },
		func(j *JournalData, v loadable.Loadable[[]model.Journal]) { j.Journals = v })
	JournalsByDatePath = Field(JournalDataPath, "byDate",
		func(j JournalData) loadable.Loadable[[]model.Journal] { return j.ByDate },
		func(j *JournalData, v loadable.Loadable[[]model.Journal]) { j.ByDate = v })

	SystemPath = Field(Root(), "system",
		func(a AppState) System { return a.System },
		func(a *AppState, v System) { a.System = v })
)

// ChatsFor addresses the chat list of one conversation.
func ChatsFor(conversationID int64) Path[loadable.Loadable[[]model.Chat]] {
	return Entry(ChatsPath, conversationID)
}
