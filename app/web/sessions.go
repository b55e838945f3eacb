package web

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/alcortesm/physiofit-radar/app/setup"
)

// Sessions keeps the progress of the setup flows in course, by flow
// ID. It has a fixed capacity: when it is exceeded the oldest flows are
// forgotten. It is safe for concurrent use.
type Sessions struct {
	cap  int
	mux  sync.Mutex
	seq  uint64
	data map[string]session
}

type session struct {
	seq      uint64
	progress setup.Progress
}

// NewSessions returns an empty Sessions with the given capacity.
func NewSessions(cap int) (*Sessions, error) {
	if cap < 1 {
		return nil, fmt.Errorf("invalid capacity %d", cap)
	}

	return &Sessions{
		cap:  cap,
		data: map[string]session{},
	}, nil
}

// Add stores a new flow and returns its ID.
func (s *Sessions) Add(p setup.Progress) string {
	id := uuid.NewString()

	s.mux.Lock()
	defer s.mux.Unlock()

	s.seq++
	s.data[id] = session{seq: s.seq, progress: p}

	for len(s.data) > s.cap {
		s.forgetOldest()
	}

	return id
}

// Get returns the progress of a flow.
func (s *Sessions) Get(id string) (setup.Progress, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	found, ok := s.data[id]

	return found.progress, ok
}

// Update replaces the progress of a flow. Flows that were forgotten
// are not brought back.
func (s *Sessions) Update(id string, p setup.Progress) bool {
	s.mux.Lock()
	defer s.mux.Unlock()

	found, ok := s.data[id]
	if !ok {
		return false
	}

	found.progress = p
	s.data[id] = found

	return true
}

func (s *Sessions) Delete(id string) {
	s.mux.Lock()
	defer s.mux.Unlock()

	delete(s.data, id)
}

func (s *Sessions) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()

	return len(s.data)
}

// forgetOldest assumes the mutex is locked and the map is not empty.
func (s *Sessions) forgetOldest() {
	var (
		oldest string
		minSeq uint64
	)

	for id, found := range s.data {
		if oldest == "" || found.seq < minSeq {
			oldest = id
			minSeq = found.seq
		}
	}

	delete(s.data, oldest)
}
