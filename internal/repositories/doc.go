// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [SessionRepository] : the single active login, so separate CLI invocations share one bearer token
//   - [FilterPresetRepository] : named filter combinations, stored as encoded query strings
//
// Presets are stored through [models.FilterState.Encode] and read back with [models.ParseFilterState], so a preset
// always round-trips to the same listing parameters as the --query flag.
package repositories
