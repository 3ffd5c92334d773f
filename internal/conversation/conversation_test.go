package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stock-research-agent/internal/types"
)

func newTestStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*Conversation),
		ttl:  time.Minute,
		stop: make(chan struct{}),
	}
}

func TestResolveYesAdoptsTickers(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	conv, err := s.Create(ctx, "matae", []types.Suggestion{{CompanyName: "Meta Platforms Inc.", Ticker: "META"}})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Resolve(ctx, conv.ID, "Yes")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StateConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", res.Status)
	}
	if len(res.Tickers) != 1 || res.Tickers[0] != "META" {
		t.Fatalf("expected [META], got %v", res.Tickers)
	}
}

func TestResolveNoProducesClarification(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	conv, _ := s.Create(ctx, "matae", []types.Suggestion{{CompanyName: "Meta Platforms Inc.", Ticker: "META"}})

	res, err := s.Resolve(ctx, conv.ID, "No")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StateRejected {
		t.Fatalf("expected REJECTED, got %s", res.Status)
	}
	if len(res.Tickers) != 0 {
		t.Errorf("rejection must not adopt tickers, got %v", res.Tickers)
	}
	if res.Message == "" {
		t.Error("expected a clarification message")
	}
}

func TestResolveUnknownConversation(t *testing.T) {
	s := newTestStore()

	if _, err := s.Resolve(context.Background(), "missing", "Yes"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveIsSingleShot(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	conv, _ := s.Create(ctx, "matae", []types.Suggestion{{Ticker: "META"}})

	if _, err := s.Resolve(ctx, conv.ID, "Yes"); err != nil {
		t.Fatal(err)
	}
	res, err := s.Resolve(ctx, conv.ID, "Yes")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if res.Status != StateConfirmed {
		t.Errorf("second caller should observe the terminal state, got %s", res.Status)
	}
}

func TestResolveConcurrentSingleWinner(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	conv, _ := s.Create(ctx, "matae", []types.Suggestion{{Ticker: "META"}})

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, losses := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Resolve(ctx, conv.ID, "Yes")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrAlreadyResolved):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if losses != workers-1 {
		t.Fatalf("expected %d losers, got %d", workers-1, losses)
	}
}

func TestExpiredConversationIsNotFound(t *testing.T) {
	s := newTestStore()
	s.ttl = 10 * time.Millisecond
	ctx := context.Background()

	conv, _ := s.Create(ctx, "matae", []types.Suggestion{{Ticker: "META"}})
	time.Sleep(20 * time.Millisecond)

	if _, err := s.Get(ctx, conv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired conversation, got %v", err)
	}
	if _, err := s.Resolve(ctx, conv.ID, "Yes"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on resolve of expired conversation, got %v", err)
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	s := newTestStore()
	s.ttl = 10 * time.Millisecond
	ctx := context.Background()

	s.Create(ctx, "one", []types.Suggestion{{Ticker: "AAPL"}})
	s.Create(ctx, "two", []types.Suggestion{{Ticker: "MSFT"}})
	time.Sleep(20 * time.Millisecond)

	s.sweep()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.data) != 0 {
		t.Errorf("expected sweep to clear expired conversations, %d remain", len(s.data))
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	conv, _ := s.Create(ctx, "matae", []types.Suggestion{{Ticker: "META"}})
	got, err := s.Get(ctx, conv.ID)
	if err != nil {
		t.Fatal(err)
	}

	got.Pending[0].Ticker = "MUTATED"
	again, _ := s.Get(ctx, conv.ID)
	if again.Pending[0].Ticker != "META" {
		t.Error("mutating a returned conversation must not affect the store")
	}
}
