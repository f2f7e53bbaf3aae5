package stream

import (
	"sync"
	"testing"
	"time"
)

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub(8)
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	hub.Publish(Event{Type: TypeCardUpdated, Year: 2070})
	hub.Publish(Event{Type: TypeCardUpdated, Year: 2030})

	first := recvEvent(t, ch)
	second := recvEvent(t, ch)
	if first.Year != 2070 || second.Year != 2030 {
		t.Fatalf("delivery order mismatch: %d then %d", first.Year, second.Year)
	}
	if second.Seq <= first.Seq {
		t.Fatalf("sequence not increasing: %d then %d", first.Seq, second.Seq)
	}
}

func TestHubPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub(1)
	_, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(Event{Type: TypeCardUpdated, Year: 2030 + i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(1)
	ch, unsubscribe := hub.Subscribe()
	unsubscribe()
	unsubscribe() // safe to call twice

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	hub.Publish(Event{Type: TypeRunStarted})
}

func TestHubSurvivesSubscriberChurnDuringPublish(t *testing.T) {
	hub := NewHub(2)

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.Publish(Event{Type: TypeCardUpdated, Year: 2030})
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					ch, unsubscribe := hub.Subscribe()
					select {
					case <-ch:
					default:
					}
					unsubscribe()
				}
			}
		}()
	}

	// A publish racing a disconnect must never send on a closed channel.
	time.Sleep(200 * time.Millisecond)
	close(stop)
	wg.Wait()
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
