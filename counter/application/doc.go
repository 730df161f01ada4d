// Package application contém os casos de uso do serviço de contagem:
// o cache de agregação de estatísticas e o validador de países.
//
// Ele depende apenas do pacote domain e não conhece net/http nem Redis.
package application
