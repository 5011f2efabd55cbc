// Package videos implements the recent-uploads retrieval stage of the pipeline.
package videos
