package infra

import (
	"context"
	"sync"

	"counter-service/counter/domain"
)

// MemoryCounterStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento (STORE=memory).
//
// Não é compartilhada entre réplicas e não é indicada para produção.
type MemoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counts: make(map[string]int64)}
}

func (s *MemoryCounterStore) Increment(_ context.Context, code string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[code]++
	return s.counts[code], nil
}

func (s *MemoryCounterStore) ScanAll(_ context.Context) (domain.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.Counts, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryCounterStore) ClearAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.counts))
	s.counts = make(map[string]int64)
	return n, nil
}

func (s *MemoryCounterStore) ClearOne(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.counts[code]
	delete(s.counts, code)
	return ok, nil
}

func (s *MemoryCounterStore) Ping(_ context.Context) error { return nil }
