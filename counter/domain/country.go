package domain

import "context"

// Country é um registro de referência: código ISO-3166 alpha-2 (maiúsculo,
// para exibição) e nome em inglês.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Validation é a resposta definitiva de uma validação de código de país.
type Validation struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"`
}

// CountryLookup resolve códigos de país para registros de referência.
//
// Implementações podem consultar uma API externa ou uma lista estática
// embutida. Elas são compostas em cadeia de fallback pela camada application.
type CountryLookup interface {
	// ByCode resolve um código normalizado. found=false significa "o código
	// definitivamente não existe" (diferente de erro de transporte).
	ByCode(ctx context.Context, code string) (c Country, found bool, err error)

	// All lista todos os registros conhecidos pela fonte.
	All(ctx context.Context) ([]Country, error)
}
