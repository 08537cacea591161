package entities

// PlatformStats is the aggregate counters view served by the stats endpoint.
type PlatformStats struct {
	Studies      int64 `json:"studies"`
	Researchers  int64 `json:"researchers"`
	Participants int64 `json:"participants"`
	Enrollments  int64 `json:"enrollments"`
}
