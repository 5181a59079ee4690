package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"avaliacar/internal/aggregate"
	"avaliacar/internal/cache"
	"avaliacar/internal/config"
	"avaliacar/internal/fipe"
	"avaliacar/internal/fitment"
	"avaliacar/internal/logger"
	"avaliacar/internal/model"
	"avaliacar/internal/search"
)

// go run cmd/avaliar/main.go -marca=Fiat -modelo=Argo -ano=2022 -pecas="kit pneus,pastilha de freio"
func main() {
	marca := flag.String("marca", "", "Marca do veículo")
	modelo := flag.String("modelo", "", "Modelo do veículo")
	ano := flag.Int("ano", 0, "Ano-modelo")
	versao := flag.String("versao", "", "Versão (opcional, ajuda na medida de pneu)")
	pecasArg := flag.String("pecas", "", "Peças a substituir, separadas por vírgula")
	flag.Parse()

	if *marca == "" || *modelo == "" || *ano == 0 || *pecasArg == "" {
		log.Fatal("informe -marca, -modelo, -ano e -pecas")
	}

	pecas := strings.Split(*pecasArg, ",")
	for i := range pecas {
		pecas[i] = strings.TrimSpace(pecas[i])
	}

	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)

	fipeClient := fipe.NewClient(cfg.FipeBaseURL, cache.NewMemory(cfg.FipeCacheSize, cfg.FipeCacheTTL), lg)
	partCache := cache.NewMemory(cfg.PartCacheSize, cfg.PartCacheTTL)
	resolver := fitment.NewResolver(cfg.FitmentBaseURL, cfg.FitmentKey, partCache, lg)

	var searcher search.Searcher
	if cfg.SerpKey != "" {
		searcher = search.NewSerpClient(cfg.SerpBaseURL, cfg.SerpKey)
	} else {
		searcher = search.NewMercadoLivreClient()
	}

	agg := aggregate.NewAggregator(searcher, resolver, partCache, lg)
	agg.Timeout = cfg.SearchTimeout
	svc := aggregate.NewService(fipeClient, agg, lg)

	veiculo := model.Vehicle{Marca: *marca, Modelo: *modelo, Ano: *ano, Versao: *versao}
	v, err := svc.Avaliar(context.Background(), veiculo, pecas)
	if err != nil {
		log.Fatalf("Erro na avaliação: %v", err)
	}

	fmt.Printf("\n%s %s %d — valor FIPE: %s\n\n", v.Vehicle.Marca, v.Vehicle.Modelo, v.Vehicle.Ano, v.ReferenceText)
	for _, p := range v.Deductions.Parts {
		if p.Price != nil {
			fmt.Printf("  %-30s R$ %10.2f  (x%d)\n", p.Part, *p.Price, p.Quantity)
			continue
		}
		fmt.Printf("  %-30s %s\n", p.Part, p.Error)
	}
	fmt.Printf("\nTotal de descontos: R$ %.2f\n", v.Deductions.TotalDeduction)
	fmt.Printf("Valor estimado:     R$ %.2f\n", v.Estimate)
}
