// Package app is the composition root of the ava client.
//
// # Overview
//
// New loads the configuration and wires every component around one
// state.Store:
//
//	config.Load()           read ~/.config/ava/config.toml
//	openLogger()            ava.log in the data dir, or the given writer
//	cache.Open()            SQLite cache in the data dir
//	remote.NewClient()      HTTP client for the remote service
//	repository.New()        one repository per entity kind
//	service.New*Service()   services writing the store's slots
//
// Run adds the pieces only the TUI needs: it starts the metrics listener and
// the background poller, restores a cached session and hands the store to
// ui.Run, which blocks until the user quits. Headless commands call New and
// use the services directly.
//
// # Background refresh
//
// StartPoller calls App.Refresh every refresh_seconds. Refresh forces the
// conversation and journal lists from the remote service while a user is
// signed in, skipping a list that is already loading. Each outcome is written
// to the system section of the store:
//
//   - Active is true while a refresh runs
//   - ConsecutiveFailures counts failed refreshes in a row
//   - LastError holds the most recent failure
//   - LastRefresh is the time of the last success
//
// After a failure the next refresh waits twice as long, up to maxBackoff.
// Two failures in a row mark the client offline (state.System.IsOffline).
//
// # Shutdown
//
// Close cancels in-flight requests through the service engine, then closes
// the cache and the log file. Slots of cancelled requests stay Loading.
package app
