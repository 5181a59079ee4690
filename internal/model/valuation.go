package model

// Vehicle identifica o veículo informado pelo usuário na consulta.
type Vehicle struct {
	Marca  string `json:"marca"`
	Modelo string `json:"modelo"`
	Ano    int    `json:"ano"`
	// Versao é opcional; quando presente ajuda a escolher a versão correta
	// na consulta de medida de pneu.
	Versao string `json:"versao,omitempty"`
}

// TireSpec é a medida original de pneu de uma versão do veículo.
type TireSpec struct {
	Width  int    `json:"largura"`
	Aspect int    `json:"perfil"`
	Rim    int    `json:"aro"`
	Medida string `json:"medida"` // ex: "185/60 R15"
}

// Candidate é um anúncio retornado pela busca de produtos.
// Price fica nil quando o texto de preço não pôde ser interpretado.
type Candidate struct {
	Title     string   `json:"titulo"`
	PriceText string   `json:"preco_texto"`
	Price     *float64 `json:"preco"`
	Link      string   `json:"link"`
	Image     string   `json:"imagem,omitempty"`
	Source    string   `json:"fonte,omitempty"`
}

// Listing é o recorte de um Candidate exibido no relatório final.
type Listing struct {
	Title     string `json:"titulo"`
	PriceText string `json:"preco_texto"`
	Link      string `json:"link"`
	Image     string `json:"imagem,omitempty"`
}

// PartReport é o resultado da busca de preço para uma peça.
// Price e Error nunca aparecem juntos: ou a peça tem preço médio, ou tem
// o motivo da falha.
type PartReport struct {
	Part     string    `json:"peca"`
	Quantity int       `json:"quantidade"`
	Price    *float64  `json:"preco_medio,omitempty"`
	Listings []Listing `json:"anuncios,omitempty"`
	Error    string    `json:"erro,omitempty"`
}

// AggregationResult agrega os relatórios de todas as peças na ordem em que
// foram pedidas. Peças com erro contribuem 0 no total.
type AggregationResult struct {
	Parts          []PartReport `json:"pecas"`
	TotalDeduction float64      `json:"total_descontos"`
}

// Valuation é a avaliação completa: valor de referência menos descontos.
type Valuation struct {
	Vehicle        Vehicle           `json:"veiculo"`
	ReferenceText  string            `json:"valor_fipe"`
	ReferenceValue float64           `json:"valor_referencia"`
	Deductions     AggregationResult `json:"descontos"`
	Estimate       float64           `json:"valor_estimado"`
}

// Lead é o contato deixado pelo usuário após uma avaliação.
type Lead struct {
	ID       string  `json:"id"`
	Nome     string  `json:"nome"`
	Email    string  `json:"email"`
	Telefone string  `json:"telefone,omitempty"`
	Vehicle  Vehicle `json:"veiculo"`
	Estimate float64 `json:"valor_estimado"`
}
