// Package preco interpreta preços no formato brasileiro ("1.234,56").
package preco

import (
	"strconv"
	"strings"
)

// maxValor descarta valores absurdos que costumam vir de anúncios com o
// preço no campo errado.
const maxValor = 10_000_000

// Parse converte um texto de preço pt-BR em número. Aceita prefixos como
// "R$" e espaços. Retorna ok=false para texto vazio, não numérico ou
// valor fora da faixa (<= 0).
func Parse(raw string) (float64, bool) {
	var sb strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			sb.WriteRune(r)
		}
	}

	s := sb.String()
	if s == "" {
		return 0, false
	}

	// "." é separador de milhar, "," é o decimal.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v > maxValor {
		return 0, false
	}
	return v, true
}
