package domain

import "context"

// Counts mapeia código de país normalizado (minúsculo) para o total de visitas.
type Counts map[string]int64

// CounterStore é a estratégia de persistência dos contadores de visita.
//
// Implementações podem armazenar em Redis, memória, etc. O incremento deve
// ser atômico no backend (read-modify-write único), nunca um GET+SET do
// chamador. A enumeração deve ser incremental (cursor) para não bloquear o
// backend com listagens completas.
type CounterStore interface {
	// Increment incrementa o contador do código em 1, criando-o em 1 se ausente.
	Increment(ctx context.Context, code string) (int64, error)

	// ScanAll enumera todos os contadores e seus valores.
	ScanAll(ctx context.Context) (Counts, error)

	// ClearAll remove todos os contadores e retorna quantas chaves saíram.
	ClearAll(ctx context.Context) (int64, error)

	// ClearOne remove o contador do código. Retorna false se não existia.
	ClearOne(ctx context.Context, code string) (bool, error)

	// Ping verifica se o backend está acessível (superfície de health check).
	Ping(ctx context.Context) error
}
