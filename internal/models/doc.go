// Package models defines the domain types shared by the cinex client.
//
// The package contains two categories of types:
//
// 1. API types: read-only values decoded from the movie API
//   - [Movie] : catalog entry with rating, box office figures and poster
//   - [WatchlistEntry] : a [Movie] with the time it was added to the watchlist
//   - [FilterOptions] : genres, years, rating range and sort options offered by the API
//   - [User] : the authenticated account
//
// 2. Client state: values owned by the client
//   - [FilterState] : the active search, filters and sort key, encoded as URL query parameters
//   - [WatchlistStatus] : per-listing cache of which movies are watchlisted
//   - [Session] : a bearer token persisted between CLI invocations
//   - [FilterPreset] : a named, persisted [FilterState]
//
// Persisted types implement [Model]; [Repository] describes their CRUD access.
package models
