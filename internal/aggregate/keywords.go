package aggregate

import (
	"strconv"
	"strings"

	"avaliacar/internal/model"
)

// partRequest é o rótulo livre já interpretado: se denota pneu e quantos
// itens o usuário quis dizer.
type partRequest struct {
	Label    string
	Tire     bool
	Quantity int
}

// Palavras que implicam um jogo completo de pneus.
var quantityWords = map[string]int{
	"quatro": 4,
	"jogo":   4,
	"kit":    4,
	"par":    2,
	"dois":   2,
	"duas":   2,
}

var stopwords = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "para": {},
	"kit": {}, "jogo": {}, "par": {},
}

func parsePart(label string) partRequest {
	tire := strings.Contains(strings.ToLower(label), "pneu")
	return partRequest{
		Label:    strings.TrimSpace(label),
		Tire:     tire,
		Quantity: quantityFor(label, tire),
	}
}

// quantityFor extrai a quantidade embutida no rótulo: dígito explícito
// primeiro ("4 pneus"), depois palavras ("jogo", "quatro"). Sem pista,
// pneu assume 2 e o resto 1.
func quantityFor(label string, tire bool) int {
	lower := strings.ToLower(label)

	for _, r := range lower {
		if r >= '1' && r <= '9' {
			return int(r - '0')
		}
	}

	for _, w := range strings.Fields(lower) {
		if n, ok := quantityWords[w]; ok {
			return n
		}
	}

	if tire {
		return 2
	}
	return 1
}

// buildKeywords monta a escada de busca da peça, da mais específica para
// a mais ampla. Com medida de pneu resolvida a palavra-chave carrega a
// medida exata e dispensa marca/modelo/ano.
func buildKeywords(req partRequest, v model.Vehicle, tire *model.TireSpec) []string {
	if req.Tire && tire != nil {
		return []string{
			req.Label + " " + tire.Medida,
			"pneu " + tire.Medida,
		}
	}

	modelo := strings.TrimSpace(v.Modelo)
	ano := strconv.Itoa(v.Ano)

	keywords := []string{
		strings.Join([]string{req.Label, v.Marca, modelo, ano}, " "),
		req.Label + " " + modelo,
	}

	if stripped := strings.TrimPrefix(strings.ToLower(req.Label), "kit "); stripped != strings.ToLower(req.Label) {
		keywords = append(keywords, stripped+" "+modelo)
	}
	if singular := singularize(req.Label); !strings.EqualFold(singular, req.Label) {
		keywords = append(keywords, singular+" "+modelo)
	}

	return keywords
}

// singularize corta o "s" final de cada palavra longa ("pastilhas" →
// "pastilha"). Plural irregular não importa aqui: o objetivo é só ampliar
// a busca quando a forma exata não achou nada.
func singularize(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		if len(w) > 3 && strings.HasSuffix(w, "s") {
			words[i] = strings.TrimSuffix(w, "s")
		}
	}
	return strings.Join(words, " ")
}

// primaryToken devolve o radical da primeira palavra significativa do
// rótulo, usado no filtro de relevância ("pastilha de freio" →
// "pastilha", "amortecedores" → "amortecedor"). O radical é comparado por
// substring, então cortar demais é seguro; cortar de menos não é.
func primaryToken(label string) string {
	for _, w := range strings.Fields(strings.ToLower(label)) {
		if _, skip := stopwords[w]; skip {
			continue
		}
		if _, err := strconv.Atoi(w); err == nil {
			continue
		}
		return stem(w)
	}
	return strings.ToLower(label)
}

func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "es"):
		return strings.TrimSuffix(w, "es")
	case len(w) > 3 && strings.HasSuffix(w, "s"):
		return strings.TrimSuffix(w, "s")
	}
	return w
}

// relevantTitle aplica o filtro de dois termos: o título precisa citar a
// peça e o modelo para não misturar anúncio de outra linha de produto.
func relevantTitle(title, label string, v model.Vehicle) bool {
	lower := strings.ToLower(title)
	if !strings.Contains(lower, primaryToken(label)) {
		return false
	}

	modelTokens := strings.Fields(strings.ToLower(v.Modelo))
	if len(modelTokens) == 0 {
		return true
	}
	return strings.Contains(lower, modelTokens[0])
}
