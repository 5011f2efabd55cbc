// Package config loads, normalizes, and validates titledoctor configuration.
//
// Configuration is a TOML document located at ~/.config/titledoctor/config.toml
// (or ./titledoctor.toml for project-local overrides). Credentials for the
// external capability adapters can be left out of the file and provided via
// environment variables instead; normalization overlays them when the file
// value is empty. Validation covers structural settings only — credential
// presence is enforced when each adapter is constructed so that failures are
// named configuration errors rather than generic startup crashes.
package config
