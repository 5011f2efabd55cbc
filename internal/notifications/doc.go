// Package notifications delivers job outcome emails via pluggable senders.
//
// The default implementation posts to the Resend API using the credentials
// configured in config.toml and gracefully degrades to a no-op when the API
// key or from address is missing. Report and failure bodies are rendered
// here so stages never build HTML themselves.
//
// All pipeline code depends only on the simple Service interface.
package notifications
