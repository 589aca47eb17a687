// Package tasks holds the long-running client operations and reports their progress on channels.
//
// # Synchronizer
//
// [Synchronizer] keeps the movie listing in step with the active [models.FilterState]:
//
//  1. A filter change stops the pending debounce timer, cancels the in-flight request and bumps the generation.
//  2. When the timer fires, GET /movies runs in its own goroutine with a cancellable context.
//  3. A response is merged only if its generation is still the latest; anything else is dropped untouched.
//  4. For authenticated sessions a watchlist-status lookup follows a non-empty listing.
//
// Watchlist toggles are optimistic: the local status flips first and is then set to the server's answer,
// or reverted on error.
//
// # Progress Reporting
//
// State changes are published as [Update] values and batch operations as [ProgressUpdate] values.
// Sends use select with default so a slow consumer never blocks the producer.
//
// # Watchlist Clearing
//
// [ClearWatchlist] removes every watchlisted movie with bounded concurrency via errgroup.
package tasks
