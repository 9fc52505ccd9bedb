package models

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// returned when a batch is accepted for asynchronous processing
type BatchAcceptedResponse struct {
	ProgressID       string `json:"progress_id"`
	TotalSubmissions int    `json:"total_submissions"`
	StatusURL        string `json:"status_url"`
}

// wraps cache counters plus memoizer hit/miss totals for the admin endpoint
type CacheStatsResponse struct {
	Entries        int    `json:"entries"`
	Hits           uint64 `json:"hits"`
	Misses         uint64 `json:"misses"`
	Evictions      uint64 `json:"evictions"`
	MemoizedHits   uint64 `json:"memoized_hits"`
	MemoizedMisses uint64 `json:"memoized_misses"`
}
