// Package service turns user actions into slot transitions.
//
// Every operation writes exactly one slot. It moves the slot to Loading
// before returning, so the order of calls is the order of Loading
// transitions, and finishes on a goroutine:
//
//	req := conversations.LoadList(false)   // slot is Loading here
//	err := req.Wait(ctx)                   // slot is Loaded or Failed
//
// A second call on a slot that is still Loading cancels the first one. The
// first call's result, if it still arrives, is discarded. Engine.Retry
// replays the last operation of a slot from the beginning.
//
// AuthService follows a guarded create-or-fetch pattern: the remote service
// is asked only when no user is cached, and the slot is always filled from
// the cache. The list services fetch the first page, append later pages with
// LoadMore, and remove deleted entries from the list by filtering after the
// remote delete succeeded.
package service
