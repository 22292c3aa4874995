// Package pipeline drives the record-to-graph conversion: it pulls records
// from a source, maps each one, and flushes the accumulated graph to a sink
// every N mapped records.
//
// The driver is single-threaded. Per-record errors are logged and skipped;
// a corrupt input stream stops the run after a final flush, and a sink
// failure stops it immediately.
package pipeline
