package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"counter-service/counter/domain"
)

// Validator valida códigos de país contra uma fonte remota, com cache local
// de TTL longo (24h) e fallback para a lista estática embutida quando a
// fonte remota falha.
//
// Falha do remoto nunca vaza para o chamador: a resposta degrada para a
// lista estática e continua definitiva (valid/invalid).
type Validator struct {
	remote domain.CountryLookup // pode ser nil (modo só-estático)
	static domain.CountryLookup
	ttl    time.Duration
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]countryEntry
}

// countryEntry guarda também respostas negativas definitivas: "xx não
// existe" vindo do remoto vale pelo TTL igual a um acerto.
type countryEntry struct {
	country   domain.Country
	found     bool
	fetchedAt time.Time
}

type ValidatorOption func(*Validator)

// WithCacheTTL ajusta a validade das entradas. Padrão: 24h.
func WithCacheTTL(d time.Duration) ValidatorOption {
	return func(v *Validator) { v.ttl = d }
}

// WithValidatorClock injeta o relógio (testes).
func WithValidatorClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

func NewValidator(remote, static domain.CountryLookup, opts ...ValidatorOption) *Validator {
	v := &Validator{
		remote: remote,
		static: static,
		ttl:    24 * time.Hour,
		now:    time.Now,
		cache:  make(map[string]countryEntry),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate responde se o código existe e, em caso positivo, o nome do país.
// Código malformado é rejeitado antes de qualquer consulta.
func (v *Validator) Validate(ctx context.Context, rawCode string) (domain.Validation, error) {
	code, err := domain.NormalizeCode(rawCode)
	if err != nil {
		return domain.Validation{}, err
	}

	if ent, ok := v.cachedEntry(code); ok {
		return domain.Validation{Valid: ent.found, Name: ent.country.Name}, nil
	}

	if v.remote != nil {
		c, found, err := v.remote.ByCode(ctx, code)
		if err == nil {
			// respostas definitivas (achou ou não achou) entram no cache;
			// falha de transporte não entra, para o remoto ser tentado de
			// novo no próximo miss
			v.store(code, c, found)
			return domain.Validation{Valid: found, Name: c.Name}, nil
		}
	}

	c, found, _ := v.static.ByCode(ctx, code)
	return domain.Validation{Valid: found, Name: c.Name}, nil
}

// Countries lista a união da lista estática com as entradas positivas do
// cache, deduplicada por código, nome remoto tendo precedência, ordenada
// por código.
func (v *Validator) Countries(ctx context.Context) ([]domain.Country, error) {
	all, err := v.static.All(ctx)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]domain.Country, len(all))
	for _, c := range all {
		byCode[strings.ToLower(c.Code)] = c
	}

	v.mu.Lock()
	cutoff := v.now().Add(-v.ttl)
	for code, ent := range v.cache {
		if ent.found && ent.fetchedAt.After(cutoff) {
			byCode[code] = ent.country
		}
	}
	v.mu.Unlock()

	out := make([]domain.Country, 0, len(byCode))
	for _, c := range byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Search filtra Countries por substring case-insensitive no código ou no nome.
func (v *Validator) Search(ctx context.Context, query string) ([]domain.Country, error) {
	all, err := v.Countries(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all, nil
	}

	out := make([]domain.Country, 0)
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Code), q) || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Warm pré-aquece o cache com a listagem completa do remoto. Best-effort:
// o chamador decide se loga o erro; a validação funciona sem o warm.
func (v *Validator) Warm(ctx context.Context) (int, error) {
	if v.remote == nil {
		return 0, nil
	}
	all, err := v.remote.All(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range all {
		code, err := domain.NormalizeCode(c.Code)
		if err != nil {
			continue
		}
		v.store(code, c, true)
	}
	return len(all), nil
}

func (v *Validator) cachedEntry(code string) (countryEntry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ent, ok := v.cache[code]
	if !ok || v.now().Sub(ent.fetchedAt) >= v.ttl {
		return countryEntry{}, false
	}
	return ent, true
}

func (v *Validator) store(code string, c domain.Country, found bool) {
	v.mu.Lock()
	v.cache[code] = countryEntry{country: c, found: found, fetchedAt: v.now()}
	v.mu.Unlock()
}
