// Package daemon wires the job store, event router, pipeline stages, HTTP
// API, and automation schedule into a single lifecycle with flock-based
// locking to prevent multiple concurrent instances.
package daemon
