// Package supervisor owns the lifecycle of the request-serving worker
// process. It forks exactly one worker, samples its CPU utilization on a
// fixed interval, kills it when utilization stays above the configured
// threshold, and reforks after a backoff on any exit. The supervisor
// shares no memory with workers; it observes them only through OS process
// metrics and signals.
package supervisor
