package domain

import (
	"errors"
	"strings"
)

var (
	// ErrStoreUnavailable indica falha de conectividade/erro do backend de
	// contadores. Propaga até o chamador externo; não há fallback de dados.
	ErrStoreUnavailable = errors.New("counter store unavailable")

	// ErrLookupUnavailable indica falha do serviço remoto de referência de
	// países. Recuperável via lista estática; nunca vaza do validador.
	ErrLookupUnavailable = errors.New("country lookup unavailable")

	// ErrInvalidCountryCode indica código malformado, rejeitado antes de
	// qualquer chamada ao backend.
	ErrInvalidCountryCode = errors.New("invalid country code")
)

// NormalizeCode reduz um código de país à forma canônica usada como chave de
// armazenamento: minúsculo, exatamente duas letras ASCII.
//
// A mesma normalização vale para contadores e para o cache do validador,
// mantendo os dois espaços de identificadores com o mesmo casing.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToLower(strings.TrimSpace(raw))
	if len(code) != 2 {
		return "", ErrInvalidCountryCode
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return "", ErrInvalidCountryCode
		}
	}
	return code, nil
}
