// Package ui provides the Bubble Tea terminal interface for ava.
//
// The Model observes the root of the state store and re-renders on every
// delivered snapshot; it never polls. Each list is rendered through
// renderSlot, which picks the branch of the slot's Loadable: not requested,
// loading (with the previous value underneath when there is one), loaded,
// partially loaded, or failed with a retry hint.
//
// Conversation and journal lists opt in to partial data so paged results
// stay visible with a "more available" hint. Chat lists do not; a
// PartialLoaded chat list renders as not requested.
//
// Actions go through the services. The Model keeps no data of its own besides
// the last snapshot plus view-local state such as the selection and the open
// input form. Pressing r on a failed slot replays the slot's last operation
// through the engine.
//
// # Key Bindings
//
//   - tab: Cycle Conversations, Journals and Logs
//   - enter: Open the selected conversation
//   - esc: Back to the conversation list
//   - r / R: Retry or reload / force a refresh from the server
//   - m: Load the next page
//   - n: New conversation, journal entry or chat message
//   - d: Delete the selected item (press twice)
//   - L: Sign in or register
//   - T: Cycle theme
//   - q or Ctrl+C: Exit
package ui
