// Package services implements the HTTP client for the movie API.
//
// # Client
//
// [Client] is the single implementation of every service interface in this package. It:
//   - attaches the session's bearer token through an [oauth2.StaticTokenSource] transport
//   - tags each request with an X-Request-ID header for log correlation
//   - waits on a token-bucket [rate.Limiter] before each request
//
// The token can be swapped at runtime with [Client.SetToken], which is how the TUI logs in without rebuilding its model.
//
// # Interfaces
//
//   - [MovieQueryService] : listing, watchlist status and toggles; all the synchronizer needs
//   - [CatalogService] : filter options, movie detail and the watchlist page
//   - [AuthService] : register, login and the current user
//   - [UserService] : likes, the dashboard watchlist and recommendations
//
// # Error Handling
//
// Non-2xx responses are returned as [*APIError], which unwraps to a sentinel from the shared package:
//   - [shared.ErrNotAuthenticated] : 401, or 422 for a malformed token
//   - [shared.ErrMovieNotFound] / [shared.ErrNotInWatchlist] : 404
//   - [shared.ErrUserExists] : 409
//   - [shared.ErrInvalidInput] : 400
//   - [shared.ErrServiceUnavailable] : 5xx
//   - [shared.ErrAPIRequest] : anything else
package services
