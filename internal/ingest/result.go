package ingest

// Result status values.
const (
	StatusDone  = "done"
	StatusError = "error"
)

// Result is the one-shot completion message the isolated ingestion unit
// writes to stdout before terminating. It is produced exactly once per
// unit and consumed exactly once by the Bridge; nothing else crosses the
// process boundary besides the startup arguments and the exit status.
type Result struct {
	Status        string `json:"status"`
	RowsProcessed int    `json:"rows_processed,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}
