package orchestrator

import (
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yungbote/datasynth-backend/internal/dataset"
)

// Dataset is the output of one successful run.
type Dataset struct {
	RunID     string
	CreatedAt time.Time
	Tables    map[string]*dataset.Table
}

// Ordered returns the tables in export order, skipping any that are missing.
func (d *Dataset) Ordered() []*dataset.Table {
	out := make([]*dataset.Table, 0, len(dataset.TableNames))
	for _, name := range dataset.TableNames {
		if t, ok := d.Tables[name]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Records renders every table as column -> value maps with nil as "".
func (d *Dataset) Records() map[string][]map[string]any {
	out := make(map[string][]map[string]any, len(d.Tables))
	for name, t := range d.Tables {
		out[name] = t.Records()
	}
	return out
}

func (d *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Records())
}

// ResultStore holds the latest published dataset and admits one run at a time.
type ResultStore struct {
	mu     sync.RWMutex
	latest *Dataset
	runs   *semaphore.Weighted
}

func NewResultStore() *ResultStore {
	return &ResultStore{runs: semaphore.NewWeighted(1)}
}

// Publish replaces the stored dataset. Last writer wins.
func (s *ResultStore) Publish(d *Dataset) {
	s.mu.Lock()
	s.latest = d
	s.mu.Unlock()
}

func (s *ResultStore) Latest() (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// TryBegin reserves the run slot. The caller must call release when done.
func (s *ResultStore) TryBegin() (release func(), ok bool) {
	if !s.runs.TryAcquire(1) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { s.runs.Release(1) }) }, true
}
