// Package llm talks to an OpenAI-compatible chat completions endpoint to
// rewrite video titles. Transient upstream failures are retried with capped
// exponential backoff; callers receive either a full set of suggestions or
// an error.
package llm
