// Package api exposes the daemon's HTTP surface: the public submission
// endpoint plus read-only job and status views, and the client the CLI uses
// to reach them.
package api
