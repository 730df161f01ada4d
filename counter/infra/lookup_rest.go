package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"counter-service/counter/domain"
)

const (
	defaultCountriesBaseURL = "https://restcountries.com/v3.1"
	defaultLookupTimeout    = 3 * time.Second

	// limite de leitura do corpo; a listagem completa tem ~250 entradas
	maxLookupBody = 1 << 20
)

// RESTCountriesLookup implementa domain.CountryLookup consultando a API
// pública restcountries.com.
//
// O timeout do client limita toda chamada remota; estouro vira erro comum
// e dispara o fallback estático na camada application, nunca um hang.
type RESTCountriesLookup struct {
	client  *http.Client
	baseURL string
}

type RESTCountriesOption func(*RESTCountriesLookup)

func WithBaseURL(base string) RESTCountriesOption {
	return func(l *RESTCountriesLookup) {
		if b := strings.TrimRight(base, "/"); b != "" {
			l.baseURL = b
		}
	}
}

// WithHTTPClient injeta o client (timeout customizado, testes).
func WithHTTPClient(c *http.Client) RESTCountriesOption {
	return func(l *RESTCountriesLookup) {
		if c != nil {
			l.client = c
		}
	}
}

func NewRESTCountriesLookup(opts ...RESTCountriesOption) *RESTCountriesLookup {
	l := &RESTCountriesLookup{
		client:  &http.Client{Timeout: defaultLookupTimeout},
		baseURL: defaultCountriesBaseURL,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// restCountry é o subconjunto da resposta que interessa (fields=cca2,name).
type restCountry struct {
	CCA2 string `json:"cca2"`
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

func (c restCountry) toDomain() domain.Country {
	return domain.Country{Code: strings.ToUpper(c.CCA2), Name: c.Name.Common}
}

func (l *RESTCountriesLookup) ByCode(ctx context.Context, code string) (domain.Country, bool, error) {
	body, status, err := l.get(ctx, "/alpha/"+url.PathEscape(code))
	if err != nil {
		return domain.Country{}, false, err
	}
	if status == http.StatusNotFound {
		// resposta definitiva: o código não existe
		return domain.Country{}, false, nil
	}

	// o endpoint /alpha responde ora um objeto, ora uma lista de um elemento
	var one restCountry
	if err := json.Unmarshal(body, &one); err == nil && one.CCA2 != "" {
		return one.toDomain(), true, nil
	}
	var many []restCountry
	if err := json.Unmarshal(body, &many); err != nil || len(many) == 0 {
		return domain.Country{}, false, fmt.Errorf("%w: unexpected body for %q", domain.ErrLookupUnavailable, code)
	}
	return many[0].toDomain(), true, nil
}

func (l *RESTCountriesLookup) All(ctx context.Context) ([]domain.Country, error) {
	body, status, err := l.get(ctx, "/all")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: list endpoint missing", domain.ErrLookupUnavailable)
	}

	var many []restCountry
	if err := json.Unmarshal(body, &many); err != nil {
		return nil, fmt.Errorf("%w: decoding list: %v", domain.ErrLookupUnavailable, err)
	}

	out := make([]domain.Country, 0, len(many))
	for _, c := range many {
		if c.CCA2 == "" {
			continue
		}
		out = append(out, c.toDomain())
	}
	return out, nil
}

// get executa o GET com o filtro de campos e devolve corpo + status.
// 404 não é erro (o chamador decide o que significa); demais não-2xx são.
func (l *RESTCountriesLookup) get(ctx context.Context, path string) ([]byte, int, error) {
	u := l.baseURL + path + "?fields=cca2,name"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", domain.ErrLookupUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: reading body: %v", domain.ErrLookupUnavailable, err)
	}
	return body, resp.StatusCode, nil
}
