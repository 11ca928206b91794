package domain

// OverlayStorage persists the locally-owned triage overlay (BoltDB + memory).
// Reads return (value, ok); writes are best-effort from the caller's point
// of view — services log failures and keep the in-memory state authoritative.
type OverlayStorage interface {
	// === Triage overlay ===
	GetSwiped() ([]string, bool)
	SaveSwiped(ids []string) error

	GetTrashed() ([]string, bool)
	SaveTrashed(ids []string) error

	// === Quota counters ===
	GetQuota() (QuotaState, bool)
	SaveQuota(q QuotaState) error

	// Reset wipes the persisted triage overlay. Quota counters survive:
	// clearing triage history must not refill the daily allowance.
	Reset() error

	// === Lifecycle ===
	Close() error
}

// QuotaState is the persisted shape of the daily swipe allowance.
type QuotaState struct {
	Used      int    `json:"used"`      // Swipes consumed since the last reset
	Bonus     int    `json:"bonus"`     // Bonus credits, carried across days
	LastReset string `json:"lastReset"` // ISO-8601 date (YYYY-MM-DD) of the last daily reset
}
