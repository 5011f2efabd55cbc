// Package titles implements the model-backed title improvement stage of the
// pipeline.
package titles
