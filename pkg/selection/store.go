package selection

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/pathquery"
)

// PairPath is a workload pair whose path was found.
type PairPath struct {
	Pair       pathquery.Pair       `json:"pair"`
	Result     *pathquery.Result    `json:"result"`
	Annotation highlight.Annotation `json:"annotation"`
}

// PairFailure is a workload pair whose query failed or found no path.
type PairFailure struct {
	Pair  pathquery.Pair `json:"pair"`
	Code  string         `json:"code,omitempty"`
	Error string         `json:"error"`
}

// WorkloadRun is one finished workload computation.
type WorkloadRun struct {
	ID         string               `json:"id"`
	Collection string               `json:"collection"`
	Members    []string             `json:"members"`
	Constraint pathquery.Constraint `json:"constraint"`
	Paths      []PairPath           `json:"paths"`
	Failures   []PairFailure        `json:"failures"`
	StartedAt  time.Time            `json:"started_at"`
	Duration   time.Duration        `json:"duration"`
}

// Queries returns the number of pair queries the run issued.
func (r WorkloadRun) Queries() int { return len(r.Paths) + len(r.Failures) }

// WorkloadStore records workload runs.
type WorkloadStore interface {
	// Save assigns run an id, stores it, and returns the id.
	Save(run WorkloadRun) (string, error)

	// Get returns a stored run.
	Get(id string) (WorkloadRun, bool)

	// List returns the stored runs, oldest first.
	List() []WorkloadRun

	// Clear removes every run.
	Clear()
}

// IDGenerator returns a fresh run id on each call.
type IDGenerator func() string

// UUIDGenerator returns random UUIDv4 ids.
func UUIDGenerator() IDGenerator {
	return uuid.NewString
}

// SequentialIDs returns prefix-1, prefix-2, ... Useful in tests.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}

// MemoryStore is an in-memory [WorkloadStore].
type MemoryStore struct {
	mu    sync.RWMutex
	newID IDGenerator
	runs  map[string]WorkloadRun
	order []string
	limit int
}

// NewMemoryStore returns an empty store. A nil generator uses
// [UUIDGenerator]. A positive limit keeps only the newest runs.
func NewMemoryStore(newID IDGenerator, limit int) *MemoryStore {
	if newID == nil {
		newID = UUIDGenerator()
	}
	return &MemoryStore{
		newID: newID,
		runs:  make(map[string]WorkloadRun),
		limit: limit,
	}
}

// Save implements [WorkloadStore].
func (s *MemoryStore) Save(run WorkloadRun) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ID = s.newID()
	if _, dup := s.runs[run.ID]; dup {
		return "", fmt.Errorf("workload id %q already in use", run.ID)
	}
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	if s.limit > 0 && len(s.order) > s.limit {
		drop := s.order[:len(s.order)-s.limit]
		for _, id := range drop {
			delete(s.runs, id)
		}
		s.order = slices.Clone(s.order[len(drop):])
	}
	return run.ID, nil
}

// Get implements [WorkloadStore].
func (s *MemoryStore) Get(id string) (WorkloadRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

// List implements [WorkloadStore].
func (s *MemoryStore) List() []WorkloadRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WorkloadRun, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id])
	}
	return out
}

// Clear implements [WorkloadStore].
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.runs)
	s.order = nil
}
