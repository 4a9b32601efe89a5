// Package memory implements an in-memory, thread-safe store for process
// snapshots.  All API methods work with copies to eliminate data races between
// the owning process goroutine and query readers.
package memory

import (
	"context"
	"sync"

	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/dao"
)

// Service stores process snapshots keyed by process id.
type Service struct {
	processes map[string]*execution.Process
	mux       sync.RWMutex
}

var _ dao.Service[string, execution.Process] = (*Service)(nil)

// Save stores a copy of the supplied snapshot, last write wins.
func (s *Service) Save(_ context.Context, p *execution.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.processes[p.ID] = p.Clone()
	return nil
}

// Load returns a copy of the snapshot so that callers cannot mutate the
// stored record.
func (s *Service) Load(_ context.Context, id string) (*execution.Process, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	p, ok := s.processes[id]
	s.mux.RUnlock()
	if !ok {
		return nil, dao.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.processes[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.processes, id)
	return nil
}

func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*execution.Process, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*execution.Process, 0, len(s.processes))
	for _, p := range s.processes {
		if !dao.FilterByState(p.State, parameters) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

// New creates an empty process snapshot store.
func New() *Service {
	return &Service{processes: map[string]*execution.Process{}}
}
