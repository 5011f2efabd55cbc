// Package events defines the pipeline's topic names and the typed payloads
// published on them. Each payload embeds a JobRef so downstream stages can
// load the owning job record.
package events
