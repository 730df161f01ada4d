package application

import (
	"context"
	"maps"
	"sync"
	"time"

	"counter-service/counter/domain"

	"golang.org/x/sync/singleflight"
)

const scanKey = "scan"

// StatsService serve estatísticas agregadas por país com um cache de TTL
// curto na frente do scan completo do backend.
//
// Propriedade central: com o snapshot expirado, no máximo UM scan roda por
// instância, independente do volume de leitores concorrentes (single-flight).
// Política de espera: leitores concorrentes bloqueiam no voo compartilhado e
// recebem o resultado fresco; nunca servimos snapshot já expirado.
type StatsService struct {
	store domain.CounterStore
	ttl   time.Duration
	now   func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	snapshot domain.Counts
	takenAt  time.Time
	// gen cresce a cada invalidação; um scan só instala snapshot se a
	// geração não mudou enquanto ele rodava (clear durante o voo).
	gen uint64
}

type StatsOption func(*StatsService)

// WithTTL ajusta a validade do snapshot. Padrão: 1s.
func WithTTL(d time.Duration) StatsOption {
	return func(s *StatsService) { s.ttl = d }
}

// WithClock injeta o relógio (testes).
func WithClock(now func() time.Time) StatsOption {
	return func(s *StatsService) { s.now = now }
}

func NewStatsService(store domain.CounterStore, opts ...StatsOption) *StatsService {
	s := &StatsService{
		store: store,
		ttl:   1 * time.Second,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordVisit incrementa o contador do país e retorna o novo total.
//
// Não invalida o snapshot: subcontagem limitada pelo TTL é aceitável em troca
// de throughput (incrementos não mudam quais chaves existem).
func (s *StatsService) RecordVisit(ctx context.Context, rawCode string) (int64, error) {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return 0, err
	}
	return s.store.Increment(ctx, code)
}

// Stats retorna o agregado por país, com staleness limitada pelo TTL.
func (s *StatsService) Stats(ctx context.Context) (domain.Counts, error) {
	if snap, ok := s.cached(); ok {
		return snap, nil
	}

	v, err, _ := s.group.Do(scanKey, func() (any, error) {
		// outro caller pode ter acabado de renovar
		if snap, ok := s.cached(); ok {
			return snap, nil
		}

		gen := s.generation()
		counts, err := s.store.ScanAll(ctx)
		if err != nil {
			return nil, err
		}
		s.install(counts, gen)
		return counts, nil
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(v.(domain.Counts)), nil
}

// ClearAll remove todos os contadores e invalida o snapshot imediatamente:
// clears mudam quais chaves existem e não podem aparecer como valores antigos
// dentro da janela de TTL.
func (s *StatsService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.ClearAll(ctx)
	// invalida mesmo em erro: a remoção pode ter sido parcial
	s.invalidate()
	return n, err
}

// ClearOne remove o contador de um país e invalida o snapshot.
func (s *StatsService) ClearOne(ctx context.Context, rawCode string) (bool, error) {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return false, err
	}
	removed, err := s.store.ClearOne(ctx, code)
	s.invalidate()
	return removed, err
}

func (s *StatsService) cached() (domain.Counts, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil || s.now().Sub(s.takenAt) >= s.ttl {
		return nil, false
	}
	return maps.Clone(s.snapshot), true
}

func (s *StatsService) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *StatsService) install(counts domain.Counts, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// houve clear durante o scan; o resultado vale para quem esperou
		// no voo, mas não pode virar cache
		return
	}
	s.snapshot = counts
	s.takenAt = s.now()
}

func (s *StatsService) invalidate() {
	s.mu.Lock()
	s.gen++
	s.snapshot = nil
	s.takenAt = time.Time{}
	s.mu.Unlock()

	// um voo em andamento não deve ser compartilhado com leitores que chegam
	// depois do clear (read-your-writes de quem limpou)
	s.group.Forget(scanKey)
}
