package domain

// HistoryStats aggregates terminal request outcomes.
type HistoryStats struct {
	Total     int64            `json:"total"`
	Completed int64            `json:"completed"`
	Failed    int64            `json:"failed"`
	ByFailure map[string]int64 `json:"by_failure,omitempty"`
}

// HistoryRepository persists terminal requests for the operational API.
type HistoryRepository interface {
	// Record stores a request that reached a terminal state.
	Record(request *Request) error

	// Recent returns the most recent terminal requests, newest first.
	Recent(limit int) ([]*Request, error)

	// Stats aggregates outcomes across all recorded requests.
	Stats() (*HistoryStats, error)
}
