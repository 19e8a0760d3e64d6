package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/model"
	"github.com/five82/ava/internal/repository"
)

const (
	endpointConversationList   = "conversation/getConversations"
	endpointConversationGet    = "conversation/getConversation"
	endpointConversationAdd    = "conversation/addConversation"
	endpointConversationDelete = "conversation/deleteConversation"

	endpointChatList = "chat/getConversationChat"
	endpointChatAdd  = "chat/addUserChat"

	endpointDiaryList   = "diary/getDiaryList"
	endpointDiaryGet    = "diary/getDiary"
	endpointDiaryAdd    = "diary/addDiary"
	endpointDiaryDelete = "diary/deleteDiary"
	endpointDiaryByDate = "diary/getDiaryByDate"
)

func pageQuery(q repository.Query) url.Values {
	values := url.Values{}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

func withID(endpoint string, id int64) string {
	return endpoint + "/" + strconv.FormatInt(id, 10)
}

// Conversations is the remote source and writer for conversations.
type Conversations struct{ c *Client }

var (
	_ repository.RemoteSource[model.Conversation] = Conversations{}
	_ repository.RemoteWriter[model.Conversation] = Conversations{}
)

// Conversations returns the conversation endpoints of c.
func (c *Client) Conversations() Conversations { return Conversations{c: c} }

func (r Conversations) List(ctx context.Context, q repository.Query) ([]model.Conversation, error) {
	return call[[]model.Conversation](ctx, r.c, http.MethodGet, endpointConversationList, endpointConversationList, pageQuery(q), nil)
}

func (r Conversations) Get(ctx context.Context, id int64) (model.Conversation, error) {
	return call[model.Conversation](ctx, r.c, http.MethodGet, endpointConversationGet, withID(endpointConversationGet, id), nil, nil)
}

type addConversationRequest struct {
	Name string `json:"conversationName"`
}

func (r Conversations) Create(ctx context.Context, conv model.Conversation) (model.Conversation, error) {
	created, err := call[model.Conversation](ctx, r.c, http.MethodPost, endpointConversationAdd, endpointConversationAdd, nil,
		addConversationRequest{Name: conv.Name})
	if err != nil {
		return model.Conversation{}, err
	}
	if created.Name == "" {
		created.Name = conv.Name
	}
	if created.DateCreated.IsZero() {
		created.DateCreated = time.Now().UTC()
	}
	return created, nil
}

func (r Conversations) Delete(ctx context.Context, id int64) error {
	_, err := call[json.RawMessage](ctx, r.c, http.MethodDelete, endpointConversationDelete, withID(endpointConversationDelete, id), nil, nil)
	return err
}

// Chats is the remote source for chats. List addresses one conversation via
// Query.ParentID.
type Chats struct{ c *Client }

var _ repository.RemoteSource[model.Chat] = Chats{}

// Chats returns the chat endpoints of c.
func (c *Client) Chats() Chats { return Chats{c: c} }

func (r Chats) List(ctx context.Context, q repository.Query) ([]model.Chat, error) {
	if q.ParentID == 0 {
		return nil, averrors.Validation("conversationID", "conversation id required")
	}
	chats, err := call[[]model.Chat](ctx, r.c, http.MethodGet, endpointChatList, withID(endpointChatList, q.ParentID), nil, nil)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		chats[i].ConversationID = q.ParentID
	}
	return chats, nil
}

// Get is unsupported: the service has no single-chat endpoint.
func (r Chats) Get(_ context.Context, id int64) (model.Chat, error) {
	return model.Chat{}, averrors.NotFound("chat", id)
}

type addChatRequest struct {
	ConversationID int64  `json:"conversationID"`
	Message        string `json:"message"`
}

// Send posts a user message and returns the assistant's reply.
func (r Chats) Send(ctx context.Context, chat model.Chat) (model.Chat, error) {
	reply, err := call[model.Chat](ctx, r.c, http.MethodPost, endpointChatAdd, endpointChatAdd, nil,
		addChatRequest{ConversationID: chat.ConversationID, Message: chat.Message})
	if err != nil {
		return model.Chat{}, err
	}
	reply.ConversationID = chat.ConversationID
	reply.IsUserMessage = false
	reply.SendState = model.SendStateNone
	return reply, nil
}

// Journals is the remote source and writer for journals.
type Journals struct{ c *Client }

var (
	_ repository.RemoteSource[model.Journal] = Journals{}
	_ repository.RemoteWriter[model.Journal] = Journals{}
)

// Journals returns the diary endpoints of c.
func (c *Client) Journals() Journals { return Journals{c: c} }

func (r Journals) List(ctx context.Context, q repository.Query) ([]model.Journal, error) {
	return call[[]model.Journal](ctx, r.c, http.MethodGet, endpointDiaryList, endpointDiaryList, pageQuery(q), nil)
}

func (r Journals) Get(ctx context.Context, id int64) (model.Journal, error) {
	return call[model.Journal](ctx, r.c, http.MethodGet, endpointDiaryGet, withID(endpointDiaryGet, id), nil, nil)
}

type addDiaryRequest struct {
	Diary model.Journal `json:"diary"`
}

func (r Journals) Create(ctx context.Context, j model.Journal) (model.Journal, error) {
	created, err := call[model.Journal](ctx, r.c, http.MethodPost, endpointDiaryAdd, endpointDiaryAdd, nil, addDiaryRequest{Diary: j})
	if err != nil {
		return model.Journal{}, err
	}
	if created.Message == "" {
		id, date := created.ID, created.DateCreated
		created = j
		created.ID = id
		if !date.IsZero() {
			created.DateCreated = date
		}
	}
	return created, nil
}

func (r Journals) Delete(ctx context.Context, id int64) error {
	_, err := call[json.RawMessage](ctx, r.c, http.MethodDelete, endpointDiaryDelete, withID(endpointDiaryDelete, id), nil, nil)
	return err
}

// ByDate returns the journals written on day.
func (r Journals) ByDate(ctx context.Context, day time.Time) ([]model.Journal, error) {
	return call[[]model.Journal](ctx, r.c, http.MethodGet, endpointDiaryByDate, endpointDiaryByDate+"/"+model.DateKey(day), nil, nil)
}
