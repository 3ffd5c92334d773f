package status

import (
	"sync"
	"time"
)

// Request processing states.
const (
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateFailed     = "failed"
	StateCancelled  = "cancelled"
)

// Record is the last known status of an analyze request.
type Record struct {
	RequestID   string    `json:"request_id"`
	State       string    `json:"status"`
	CurrentStep string    `json:"current_step,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is an in-memory request status registry. Records are lost on
// restart; a TTL sweep keeps the map bounded.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Record
	ttl  time.Duration
	stop chan struct{}
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		data: make(map[string]*Record),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Begin registers a new request as processing.
func (s *Store) Begin(requestID string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[requestID] = &Record{
		RequestID: requestID,
		State:     StateProcessing,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Step updates the current pipeline step of a processing request.
func (s *Store) Step(requestID, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.data[requestID]; ok && r.State == StateProcessing {
		r.CurrentStep = step
		r.UpdatedAt = time.Now()
	}
}

// Complete marks a request finished.
func (s *Store) Complete(requestID string) {
	s.setState(requestID, StateCompleted, "")
}

// Fail marks a request failed with a message.
func (s *Store) Fail(requestID, errMsg string) {
	s.setState(requestID, StateFailed, errMsg)
}

// Cancel marks a processing request cancelled. Returns false when the
// request is unknown or already terminal.
func (s *Store) Cancel(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[requestID]
	if !ok || r.State != StateProcessing {
		return false
	}
	r.State = StateCancelled
	r.UpdatedAt = time.Now()
	return true
}

// Get returns the record for a request ID.
func (s *Store) Get(requestID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[requestID]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Close stops the background sweeper.
func (s *Store) Close() {
	close(s.stop)
}

func (s *Store) setState(requestID, state, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.data[requestID]; ok {
		r.State = state
		r.Error = errMsg
		r.CurrentStep = ""
		r.UpdatedAt = time.Now()
	}
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(10 * time.Minute)
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

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, r := range s.data {
		if s.ttl > 0 && now.Sub(r.UpdatedAt) > s.ttl {
			delete(s.data, id)
		}
	}
}
