// Package engine drives the external headless engine process that
// regenerates a module. It builds the fixed regeneration command, runs it
// with a hard timeout, and reports the outcome as a [Result] value rather
// than an error, so callers can match every case and keep going.
package engine
