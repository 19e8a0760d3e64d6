// Package state provides the observable application state for ava.
//
// # Overview
//
// A single Store owns the AppState root. Services write into it, the UI and
// the background refresher observe it. Every asynchronous value in the tree
// is a loadable.Loadable, so the UI renders one of five branches per slot
// without knowing which service produced the value.
//
// # Paths
//
// Values are addressed by typed paths built from the root:
//
//	state.UserPath            // userData.user
//	state.ConversationsPath   // conversationData.conversations
//	state.ChatsFor(7)         // chatData.chats[7]
//
// Field derives struct fields, Entry derives one key of a map. Reading a path
// whose parent is missing returns the zero value. Writing one panics: the
// parent must be created first, and map entries never create their map.
//
// # Notification
//
//	writer ──Set──→ Store ──(lock held)──→ subscriber queues ──→ Subscription.C
//
// A write at key Q notifies every observer at P where P == Q, P is an
// ancestor of Q (the root observes everything) or Q is an ancestor of P.
// Notifications are queued while the write lock is held, so all subscribers
// see writes in issue order. Queues are unbounded; a slow consumer delays
// only itself and never loses an event.
//
// # Slots
//
// Bind returns a Slot, the write side used by services:
//
//	h := slot.Loading(bag)          // synchronous; fixes issue order
//	go func() {
//		v, err := repo.FetchAll(h.Context(), q, false)
//		_ = slot.Complete(h, v, err) // superseded error if a newer Loading won
//	}()
//
// Loading cancels the handle of any request still in flight on the same
// slot. Complete writes only while its handle still owns the slot, which
// makes last-issued-wins hold no matter the order completions arrive in.
//
// # Offline detection
//
// System.ConsecutiveFailures is maintained by the background refresher and
// System.IsOffline reports two or more failed refreshes in a row.
package state
