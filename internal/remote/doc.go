// Package remote provides the HTTP client for the ava backend API.
//
// Every endpoint answers with a JSON envelope:
//
//	{"code": 200, "message": "ok", "data": ...}
//
// Client.call checks the HTTP status and the envelope code, then decodes
// data into the requested type. Failures are classified with the errors
// package: network and decoding problems are transport errors, HTTP 404 is
// not_found, and other error statuses carry the status code in their context.
//
// The entity views (Conversations, Chats, Journals) adapt the endpoints to
// the repository's RemoteSource and RemoteWriter interfaces:
//
//	conversation/getConversations?offset=&limit=   GET
//	conversation/addConversation                   POST
//	conversation/deleteConversation/{id}           DELETE
//	chat/getConversationChat/{conversationID}      GET
//	chat/addUserChat                               POST
//	diary/getDiaryList?offset=&limit=              GET
//	diary/addDiary                                 POST
//	diary/deleteDiary/{id}                         DELETE
//	diary/getDiaryByDate/{yyyy-mm-dd}              GET
//	user/login, user/register/                     POST
//
// Paths are resolved relative to the configured api_url, so a base such as
// https://example.com/api/ keeps its prefix.
package remote
