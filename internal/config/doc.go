// Package config loads, normalizes, and validates MoodTunes configuration.
//
// It supplies defaults, reads TOML files, applies environment overrides
// such as DATABASE_URL and LASTFM_API_KEY, and expands user paths. Obtain
// settings through this package so callers receive canonical driver names,
// log formats and clear validation errors.
package config
