package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/types"
)

// State is the lifecycle of a confirmation exchange. AWAITING_CONFIRMATION
// is the only non-terminal state.
type State string

const (
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateConfirmed            State = "CONFIRMED"
	StateRejected             State = "REJECTED"
	StateExpired              State = "EXPIRED"
)

// ClarificationMessage is returned to the user after a rejection.
const ClarificationMessage = "Got it. Which company or ticker would you like to analyze? You can type a ticker like AAPL or a company name."

// Conversation is one in-flight confirmation exchange.
type Conversation struct {
	ID               string             `json:"conversation_id"`
	OriginalQuery    string             `json:"original_query"`
	Pending          []types.Suggestion `json:"pending_corrections"`
	ConfirmedTickers []string           `json:"confirmed_tickers,omitempty"`
	State            State              `json:"state"`
	CreatedAt        time.Time          `json:"created_at"`
}

// Resolution is the outcome of applying a confirmation response.
type Resolution struct {
	Status  State
	Tickers []string
	Message string
}

var (
	ErrNotFound        = errors.New("conversation not found")
	ErrAlreadyResolved = errors.New("conversation already resolved")
)

// Store holds in-flight conversations. Resolve must be atomic: of two
// concurrent calls for the same conversation, exactly one applies the
// transition and the other observes ErrAlreadyResolved.
type Store interface {
	Create(ctx context.Context, query string, pending []types.Suggestion) (*Conversation, error)
	Get(ctx context.Context, id string) (*Conversation, error)
	Resolve(ctx context.Context, id, response string) (Resolution, error)
	Delete(ctx context.Context, id string) error
}

// applyResponse computes the single state transition for a response.
func applyResponse(conv *Conversation, response string) Resolution {
	answer := strings.ToLower(strings.TrimSpace(response))
	if answer == "yes" || answer == "y" {
		conv.State = StateConfirmed
		for _, p := range conv.Pending {
			conv.ConfirmedTickers = append(conv.ConfirmedTickers, p.Ticker)
		}
		return Resolution{Status: StateConfirmed, Tickers: conv.ConfirmedTickers}
	}
	conv.State = StateRejected
	return Resolution{Status: StateRejected, Message: ClarificationMessage}
}

// MemoryStore keeps conversations in a process-local map with TTL expiry.
// A restart loses all open conversations.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]*Conversation
	ttl  time.Duration
	stop chan struct{}
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		data: make(map[string]*Conversation),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryStore) Create(ctx context.Context, query string, pending []types.Suggestion) (*Conversation, error) {
	conv := &Conversation{
		ID:            uuid.NewString(),
		OriginalQuery: query,
		Pending:       pending,
		State:         StateAwaitingConfirmation,
		CreatedAt:     time.Now(),
	}

	s.mu.Lock()
	s.data[conv.ID] = conv
	s.mu.Unlock()

	logger.Confirmation(ctx, conv.ID, "created", "pending", len(pending))
	return cloned(conv), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(conv) {
		conv.State = StateExpired
		return nil, ErrNotFound
	}
	return cloned(conv), nil
}

func (s *MemoryStore) Resolve(ctx context.Context, id, response string) (Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.data[id]
	if !ok {
		return Resolution{}, ErrNotFound
	}
	if s.expired(conv) {
		conv.State = StateExpired
		return Resolution{}, ErrNotFound
	}
	if conv.State != StateAwaitingConfirmation {
		return Resolution{Status: conv.State}, ErrAlreadyResolved
	}

	res := applyResponse(conv, response)
	logger.Confirmation(ctx, id, string(res.Status))
	return res, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() {
	close(s.stop)
}

func (s *MemoryStore) expired(conv *Conversation) bool {
	return s.ttl > 0 && time.Since(conv.CreatedAt) > s.ttl
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, conv := range s.data {
		if s.expired(conv) || conv.State != StateAwaitingConfirmation {
			delete(s.data, id)
		}
	}
}

func cloned(conv *Conversation) *Conversation {
	c := *conv
	c.Pending = append([]types.Suggestion(nil), conv.Pending...)
	c.ConfirmedTickers = append([]string(nil), conv.ConfirmedTickers...)
	return &c
}
