// Package fs implements a filesystem-backed process snapshot store on top of
// the abstract file storage so that terminal process records can be audited
// after the host process exits.  Any afs-supported scheme works (file://,
// mem://, s3:// ...).
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/viant/fulfillment/runtime/execution"
	"github.com/viant/fulfillment/service/dao"
)

// Service persists process snapshots as JSON documents under a base URL.
type Service struct {
	baseURL   string
	fs        afs.Service
	fsOptions []storage.Option
	mu        sync.RWMutex
}

var _ dao.Service[string, execution.Process] = (*Service)(nil)

// New creates a filesystem process store rooted at baseURL.
func New(baseURL string, options ...storage.Option) *Service {
	return &Service{baseURL: baseURL, fs: afs.New(), fsOptions: options}
}

// Save persists a process snapshot.
func (s *Service) Save(ctx context.Context, process *execution.Process) error {
	if process == nil {
		return dao.ErrNilEntity
	}
	if process.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(process)
	if err != nil {
		return fmt.Errorf("failed to marshal process %v: %w", process.ID, err)
	}
	location := s.processURL(process.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save process to %v: %w", location, err)
	}
	return nil
}

// Load retrieves a process snapshot.
func (s *Service) Load(ctx context.Context, id string) (*execution.Process, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.processURL(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check process %v: %w", id, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, location, s.fsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to read process %v: %w", id, err)
	}
	var process execution.Process
	if err = json.Unmarshal(data, &process); err != nil {
		return nil, fmt.Errorf("failed to unmarshal process %v: %w", id, err)
	}
	return &process, nil
}

// Delete removes a process snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.processURL(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check process %v: %w", id, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, location)
}

// List returns all stored snapshots, optionally narrowed by state.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	var out []*execution.Process
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, object.URL(), s.fsOptions...)
		if err != nil {
			return nil, err
		}
		process := &execution.Process{}
		if err = json.Unmarshal(data, process); err != nil {
			continue
		}
		if !dao.FilterByState(process.State, parameters) {
			continue
		}
		out = append(out, process)
	}
	return out, nil
}

func (s *Service) processURL(id string) string {
	return url.Join(s.baseURL, path.Join("processes", id+".json"))
}
