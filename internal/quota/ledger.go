package quota

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/sift/internal/domain"
)

// dateLayout is the ISO-8601 date stored with the counters.
const dateLayout = "2006-01-02"

// DefaultDailyLimit is the free swipe allowance per calendar day.
const DefaultDailyLimit = 50

// Ledger tracks the daily swipe allowance and bonus credits. Bonus credits
// (rewarded ads, purchases) carry across days; the daily allowance resets
// when the stored date falls behind today. Simple counter bookkeeping —
// deliberately not part of the triage core.
type Ledger struct {
	storage domain.OverlayStorage
	logger  *slog.Logger
	limit   int
	now     func() time.Time

	mu        sync.Mutex
	used      int
	bonus     int
	lastReset string
}

// NewLedger loads persisted counters and applies the daily reset if the
// stored date is not today.
func NewLedger(storage domain.OverlayStorage, limit int, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = DefaultDailyLimit
	}

	l := &Ledger{storage: storage, logger: logger, limit: limit, now: time.Now}

	if q, ok := storage.GetQuota(); ok {
		l.used = q.Used
		l.bonus = q.Bonus
		l.lastReset = q.LastReset
	}
	l.mu.Lock()
	l.rolloverLocked()
	l.mu.Unlock()

	return l
}

// Remaining returns how many swipes are currently available.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rolloverLocked()

	free := l.limit - l.used
	if free < 0 {
		free = 0
	}
	return free + l.bonus
}

// Consume spends one swipe. Daily allowance is spent before bonus credits.
// Returns false when nothing is left.
func (l *Ledger) Consume() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rolloverLocked()

	switch {
	case l.used < l.limit:
		l.used++
	case l.bonus > 0:
		l.bonus--
	default:
		return false
	}

	l.persistLocked()
	return true
}

// GrantBonus adds bonus swipe credits (rewarded ad completion, purchase).
func (l *Ledger) GrantBonus(n int) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bonus += n
	l.persistLocked()
	l.logger.Info("granted bonus swipes", "count", n)
}

// rolloverLocked resets the daily counter when the day changed.
// Callers hold mu.
func (l *Ledger) rolloverLocked() {
	today := l.now().Format(dateLayout)
	if l.lastReset == today {
		return
	}
	l.used = 0
	l.lastReset = today
	l.persistLocked()
}

// persistLocked writes the counters. Best-effort: failures are logged.
// Callers hold mu.
func (l *Ledger) persistLocked() {
	q := domain.QuotaState{Used: l.used, Bonus: l.bonus, LastReset: l.lastReset}
	if err := l.storage.SaveQuota(q); err != nil {
		l.logger.Error("failed to save quota counters", "error", err)
	}
}
