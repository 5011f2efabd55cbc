// Package resolve implements the channel resolution stage of the pipeline.
package resolve
