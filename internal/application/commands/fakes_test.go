package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"railio/internal/application"
	"railio/internal/domain"
	"railio/internal/ports"
)

// memSources is an in-memory ports.SourceRepository
type memSources struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemSources(files map[string][]byte) *memSources {
	if files == nil {
		files = make(map[string][]byte)
	}
	return &memSources{files: files}
}

func (m *memSources) Read(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrNotFound, path)
	}
	return data, nil
}

func (m *memSources) Write(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	return nil
}

func (m *memSources) List(dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for p := range m.files {
		if strings.HasPrefix(p, dir+"/") {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", application.ErrNotFound, dir)
	}
	sort.Strings(out)
	return out, nil
}

// memIndex is an in-memory ports.RunIndex
type memIndex struct {
	runs []domain.Run
}

func (m *memIndex) Open(string) error { return nil }
func (m *memIndex) Close() error      { return nil }

func (m *memIndex) GetRun(id string) (*domain.Run, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			r := m.runs[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: run %s", application.ErrNotFound, id)
}

func (m *memIndex) LatestRun(source string) (*domain.Run, error) {
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].Source == source {
			r := m.runs[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: no run for %s", application.ErrNotFound, source)
}

func (m *memIndex) ListRuns(source string, limit int) ([]domain.Run, error) {
	var out []domain.Run
	for i := len(m.runs) - 1; i >= 0; i-- {
		if source == "" || m.runs[i].Source == source {
			out = append(out, m.runs[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memIndex) BeginTx() (ports.RunTx, error) {
	return &memTx{index: m}, nil
}

type memTx struct {
	index   *memIndex
	pending []domain.Run
}

func (t *memTx) InsertRun(run *domain.Run) error {
	t.pending = append(t.pending, *run)
	return nil
}

func (t *memTx) InsertCounts(runID string, counts map[domain.ObjectKind]int) error {
	for i := range t.pending {
		if t.pending[i].ID == runID {
			t.pending[i].Counts = counts
			return nil
		}
	}
	return fmt.Errorf("unknown run %s", runID)
}

func (t *memTx) DeleteRun(id string) error { return nil }

func (t *memTx) Commit() error {
	t.index.runs = append(t.index.runs, t.pending...)
	return nil
}

func (t *memTx) Rollback() error {
	t.pending = nil
	return nil
}

// recordingPublisher is a ports.GraphPublisher that keeps the last model
type recordingPublisher struct {
	model *domain.RailwayModel
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, model *domain.RailwayModel) (*domain.PublishStats, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.model = model
	return &domain.PublishStats{
		Nodes:   len(model.Graph.Nodes),
		Edges:   len(model.Graph.Edges),
		Objects: len(model.Objects),
	}, nil
}

func (p *recordingPublisher) Close(context.Context) error { return nil }
