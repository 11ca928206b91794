package quota

import (
	"testing"
	"time"

	"github.com/mmcdole/sift/internal/domain"
)

// fakeStorage keeps quota counters in memory.
type fakeStorage struct {
	quota   domain.QuotaState
	hasData bool
}

func (f *fakeStorage) GetSwiped() ([]string, bool)         { return nil, false }
func (f *fakeStorage) SaveSwiped(ids []string) error       { return nil }
func (f *fakeStorage) GetTrashed() ([]string, bool)        { return nil, false }
func (f *fakeStorage) SaveTrashed(ids []string) error      { return nil }
func (f *fakeStorage) GetQuota() (domain.QuotaState, bool) { return f.quota, f.hasData }
func (f *fakeStorage) SaveQuota(q domain.QuotaState) error {
	f.quota = q
	f.hasData = true
	return nil
}
func (f *fakeStorage) Reset() error { return nil } // overlay only; quota survives
func (f *fakeStorage) Close() error { return nil }

func newTestLedger(storage *fakeStorage, limit int) (*Ledger, *time.Time) {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	clock := &now
	l := NewLedger(storage, limit, nil)
	l.now = func() time.Time { return *clock }
	return l, clock
}

func TestConsumeSpendsDailyAllowance(t *testing.T) {
	l, _ := newTestLedger(&fakeStorage{}, 3)

	for i := 0; i < 3; i++ {
		if !l.Consume() {
			t.Fatalf("consume %d should succeed", i+1)
		}
	}
	if l.Consume() {
		t.Error("consume past the limit should fail")
	}
	if got := l.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestDailyAllowanceBeforeBonus(t *testing.T) {
	l, _ := newTestLedger(&fakeStorage{}, 2)
	l.GrantBonus(1)

	if got := l.Remaining(); got != 3 {
		t.Fatalf("Remaining = %d, want 3", got)
	}

	l.Consume()
	l.Consume()
	if l.bonus != 1 {
		t.Error("daily allowance must be spent before bonus credits")
	}

	if !l.Consume() {
		t.Fatal("bonus credit should cover the third swipe")
	}
	if l.bonus != 0 {
		t.Errorf("bonus = %d, want 0", l.bonus)
	}
}

func TestDailyRollover(t *testing.T) {
	l, clock := newTestLedger(&fakeStorage{}, 2)

	l.Consume()
	l.Consume()
	if l.Remaining() != 0 {
		t.Fatal("allowance should be exhausted")
	}

	*clock = clock.AddDate(0, 0, 1)
	if got := l.Remaining(); got != 2 {
		t.Errorf("Remaining after rollover = %d, want 2", got)
	}
	if !l.Consume() {
		t.Error("consume should succeed after the daily reset")
	}
}

func TestBonusSurvivesRollover(t *testing.T) {
	l, clock := newTestLedger(&fakeStorage{}, 1)
	l.GrantBonus(5)

	l.Consume() // daily
	l.Consume() // bonus

	*clock = clock.AddDate(0, 0, 1)
	if got := l.Remaining(); got != 1+4 {
		t.Errorf("Remaining = %d, want 5 (fresh daily + remaining bonus)", got)
	}
}

func TestCountersSurviveRestart(t *testing.T) {
	// Real clock on both sides so no rollover interferes.
	storage := &fakeStorage{}
	l := NewLedger(storage, 10, nil)
	l.Consume()
	l.Consume()
	l.GrantBonus(3)

	restored := NewLedger(storage, 10, nil)
	if got := restored.Remaining(); got != 8+3 {
		t.Errorf("Remaining after restart = %d, want 11", got)
	}
}

func TestStaleCountersResetOnLoad(t *testing.T) {
	storage := &fakeStorage{
		quota:   domain.QuotaState{Used: 10, Bonus: 2, LastReset: "2024-01-01"},
		hasData: true,
	}

	l := NewLedger(storage, 10, nil)
	// NewLedger uses the real clock, which is past the stored date.
	if got := l.Remaining(); got != 10+2 {
		t.Errorf("Remaining = %d, want 12 after rollover on load", got)
	}
}

func TestZeroLimitFallsBackToDefault(t *testing.T) {
	l := NewLedger(&fakeStorage{}, 0, nil)
	if got := l.Remaining(); got != DefaultDailyLimit {
		t.Errorf("Remaining = %d, want %d", got, DefaultDailyLimit)
	}
}

func TestGrantBonusIgnoresNonPositive(t *testing.T) {
	l, _ := newTestLedger(&fakeStorage{}, 5)
	l.GrantBonus(0)
	l.GrantBonus(-3)
	if l.bonus != 0 {
		t.Errorf("bonus = %d, want 0", l.bonus)
	}
}
