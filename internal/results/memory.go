package results

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryStore keeps records in process. It backs local nodes and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Write(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		key := recordKey(r.MessageID, r.Position)
		if _, ok := s.index[key]; ok {
			continue
		}
		s.index[key] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id common.Hash) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].ID == id {
			return s.records[i], nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context, q Query) ([]Record, error) {
	q = q.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Record{}
	skipped := 0
	for i := len(s.records) - 1; i >= 0 && len(out) < q.Limit; i-- {
		r := s.records[i]
		if q.BySource() && (r.SourceChain != q.SourceChain || r.SourceAddress != q.SourceAddress) {
			continue
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) ListByMessage(_ context.Context, messageID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Record{}
	for _, r := range s.records {
		if r.MessageID == messageID {
			out = append(out, r)
		}
	}
	return out, nil
}

func recordKey(messageID string, position int) string {
	return fmt.Sprintf("%s/%d", messageID, position)
}
