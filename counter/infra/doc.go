// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - RedisCounterStore: contadores atômicos no Redis (INCR + SCAN por cursor)
//   - MemoryCounterStore: contadores em memória para testes/desenvolvimento
//   - RESTCountriesLookup: cliente da API restcountries.com
//   - StaticCountries: lista ISO 3166-1 embutida, usada como fallback
package infra
