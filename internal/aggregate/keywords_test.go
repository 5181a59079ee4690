package aggregate

import (
	"reflect"
	"testing"

	"avaliacar/internal/model"
)

func TestParsePart(t *testing.T) {
	tests := []struct {
		label string
		tire  bool
		qty   int
	}{
		{"kit pneus", true, 4},
		{"4 pneus", true, 4},
		{"quatro pneus", true, 4},
		{"jogo de pneus", true, 4},
		{"pneus", true, 2},
		{"pneu dianteiro", true, 2},
		{"par de pneus", true, 2},
		{"pastilha de freio", false, 1},
		{"2 amortecedores", false, 2},
		{"parabrisa", false, 1},
	}
	for _, tt := range tests {
		got := parsePart(tt.label)
		if got.Tire != tt.tire || got.Quantity != tt.qty {
			t.Errorf("parsePart(%q) = {Tire:%v Quantity:%d}, esperado {%v %d}",
				tt.label, got.Tire, got.Quantity, tt.tire, tt.qty)
		}
	}
}

func TestBuildKeywordsComMedida(t *testing.T) {
	v := model.Vehicle{Marca: "Fiat", Modelo: "Argo", Ano: 2022}
	tire := &model.TireSpec{Width: 185, Aspect: 60, Rim: 15, Medida: "185/60 R15"}

	got := buildKeywords(parsePart("kit pneus"), v, tire)
	want := []string{"kit pneus 185/60 R15", "pneu 185/60 R15"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildKeywords = %v, esperado %v", got, want)
	}
}

func TestBuildKeywordsSemMedida(t *testing.T) {
	v := model.Vehicle{Marca: "Fiat", Modelo: "Argo", Ano: 2022}

	got := buildKeywords(parsePart("kit pastilhas"), v, nil)
	want := []string{
		"kit pastilhas Fiat Argo 2022",
		"kit pastilhas Argo",
		"pastilhas Argo",
		"kit pastilha Argo",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildKeywords = %v, esperado %v", got, want)
	}
}

func TestPrimaryToken(t *testing.T) {
	tests := []struct{ label, want string }{
		{"pastilha de freio", "pastilha"},
		{"kit pneus", "pneu"},
		{"4 pneus", "pneu"},
		{"jogo de amortecedores", "amortecedor"},
	}
	for _, tt := range tests {
		if got := primaryToken(tt.label); got != tt.want {
			t.Errorf("primaryToken(%q) = %q, esperado %q", tt.label, got, tt.want)
		}
	}
}

func TestRelevantTitle(t *testing.T) {
	v := model.Vehicle{Marca: "Fiat", Modelo: "Argo", Ano: 2022}

	if !relevantTitle("Pastilha de Freio Dianteira Fiat Argo 1.0", "pastilha de freio", v) {
		t.Error("título com peça e modelo deveria passar")
	}
	if relevantTitle("Pastilha de Freio Gol G5", "pastilha de freio", v) {
		t.Error("título sem o modelo deveria ser rejeitado")
	}
	if relevantTitle("Farol Dianteiro Argo", "pastilha de freio", v) {
		t.Error("título sem a peça deveria ser rejeitado")
	}
}
