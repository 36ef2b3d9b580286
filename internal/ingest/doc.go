// Package ingest implements bulk-file ingestion of policy data.
//
// Parsing and row processing run inside an isolated worker process
// (cmd/ingest-worker) with its own database connection; the Bridge in this
// package launches that process, consumes its one-shot Result message and
// maps the exit status back to the HTTP caller. Keeping both sides of the
// protocol in one package keeps the message format and its consumers in
// sync.
package ingest
