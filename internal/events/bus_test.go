package events

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(Event{Kind: KindTrashChanged})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Kind != KindTrashChanged {
				t.Errorf("subscriber %d got kind %v, want trash changed", i, ev.Kind)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	bus.Publish(Event{Kind: KindOverlayReset})

	if _, ok := <-ch; ok {
		t.Error("canceled subscription should deliver nothing")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	cancel()
	cancel()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overfill the buffer; Publish must drop rather than stall.
	for i := 0; i < 32; i++ {
		bus.Publish(Event{Kind: KindProgressInvalidated})
	}

	delivered := 0
	for {
		select {
		case <-ch:
			delivered++
			continue
		default:
		}
		break
	}
	if delivered == 0 || delivered > 8 {
		t.Errorf("delivered %d events, want between 1 and the buffer size", delivered)
	}
}
