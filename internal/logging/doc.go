// Package logging centralizes slog construction and the standardized
// structured field keys used across the daemon. Component loggers carry a
// component attribute, and WithContext layers job, stage, and correlation
// identifiers pulled from request contexts.
package logging
