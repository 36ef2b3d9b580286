// Package schedule implements the durable scheduled-message engine.
//
// Jobs are persisted before they are armed, timers live only in process
// memory, and ReloadPending reconciles the two at startup: every job
// still marked pending in the store is re-armed through the same logic
// used for fresh submissions. Within one process a job fires at most once
// (guarded by the done flag); across restarts execution is at-least-once,
// because the output write and the done flip are separate store calls.
package schedule
