package monitor

import "time"

type Status struct {
	Driver        string    `json:"driver"`
	Available     bool      `json:"available"`
	UsageBytes    int64     `json:"usage_bytes"`
	QuotaBytes    int64     `json:"quota_bytes"`
	SchemaVersion string    `json:"schema_version"`
	LastCheck     time.Time `json:"last_check"`
}
