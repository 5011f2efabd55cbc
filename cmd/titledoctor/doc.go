// Package main hosts the titledoctor CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon's API, job maintenance operations, and
// configuration scaffolding. When the daemon is unreachable, read-only job
// commands fall back to opening the job store directly.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
