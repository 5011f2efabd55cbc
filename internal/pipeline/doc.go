// Package pipeline wires stage handlers to the event router and enforces the
// shared stage protocol: one durable status transition into the stage, one
// out, and exactly one published outcome event per delivery.
package pipeline
