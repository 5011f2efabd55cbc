// Package bus provides the in-process event router that connects pipeline
// stages. Stages subscribe to topics and publish follow-on events; the router
// fans each event out to every subscriber on its own goroutine.
package bus
