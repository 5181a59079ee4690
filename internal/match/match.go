// Package match compara rótulos curtos de texto (nomes de versão, títulos
// de anúncio) por sobreposição de palavras.
package match

import "strings"

// Score conta quantas palavras os dois textos têm em comum. A comparação
// não diferencia maiúsculas de minúsculas.
func Score(a, b string) int {
	setA := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(a)) {
		setA[w] = struct{}{}
	}

	score := 0
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := setA[w]; ok {
			score++
		}
	}
	return score
}

// Best escolhe o candidato mais parecido com target. Igualdade exata
// (ignorando caixa) vence na hora e retorna exact=true. Quando nenhum
// candidato pontua, devolve o primeiro da lista — melhor um palpite de
// baixa confiança do que nenhum resultado. ok=false só com lista vazia.
func Best(target string, candidates []string) (idx int, exact bool, ok bool) {
	if len(candidates) == 0 {
		return 0, false, false
	}

	target = strings.TrimSpace(target)
	best, bestScore := 0, 0
	for i, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c), target) && target != "" {
			return i, true, true
		}
		if s := Score(target, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, false, true
}
