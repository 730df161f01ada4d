// Package counter fornece os adapters HTTP (net/http) do serviço de contagem
// de visitas por país.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (cache de estatísticas, validador de países)
//   - infra: implementações concretas (Redis, memória, restcountries, lista estática)
//   - counter (este pacote): handlers HTTP + middleware de proteção + tradução
//     de erros do domínio para status/corpo JSON
//
// Fluxo de uma requisição:
//
//  1. O middleware Throttle decide se a requisição entra (token bucket por
//     cliente + teto de requisições em voo)
//  2. O handler extrai o código de país da rota e chama a camada application
//  3. Erros sentinela do domain viram status HTTP (400/503); o resto vira 500
//
// Variáveis de ambiente do binário counterd (cmd/counterd) controlam o
// comportamento, como REDIS_ADDR, STATS_TTL, COUNTRY_API_URL e RATE_RPS.
package counter
