package domain

import "time"

// UploadReport summarises one processed sensor export. Individual malformed
// rows are dropped and counted, never fatal.
type UploadReport struct {
	UploadID    string    `json:"upload_id"`
	Filename    string    `json:"filename"`
	Site        SiteKey   `json:"site"`
	StorageKey  string    `json:"storage_key"`
	RowsTotal   int       `json:"rows_total"`
	RowsDropped int       `json:"rows_dropped"`
	ValuesAdded int       `json:"values_added"`
	Days        []string  `json:"days"`
	ReceivedAt  time.Time `json:"received_at"`
}
