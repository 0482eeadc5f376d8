// Comando pipeline ejecuta la corrida diaria de reposición desde la línea de comandos
// (cron, scheduler externo u operador).
//
//	pipeline                         corrida de hoy
//	pipeline -date 2024-03-15        corrida de una fecha
//	pipeline -date 2024-03-15 -validate-only
//	pipeline -replay 7               re-ejecuta los 7 días anteriores a -date
//
// Código de salida: 0 éxito, 1 corrida fallida, 2 uso inválido, 3 corrida en curso.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/procurement-pipeline/internal/application/dto"
	appprocurement "github.com/jhoicas/procurement-pipeline/internal/application/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/bootstrap"
	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/pkg/config"
	"github.com/jhoicas/procurement-pipeline/pkg/logger"
)

const (
	exitOK         = 0
	exitFailed     = 1
	exitUsage      = 2
	exitInProgress = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dateFlag       = flag.String("date", "", "fecha de proceso YYYY-MM-DD (por defecto hoy, UTC)")
		replay         = flag.Int("replay", 0, "re-ejecuta los N días anteriores a -date")
		skipValidation = flag.Bool("skip-validation", false, "omite la etapa de validación")
		validateOnly   = flag.Bool("validate-only", false, "solo verifica entradas e infraestructura")
		parallel       = flag.Bool("parallel", false, "exporta órdenes y reporte en paralelo")
		summary        = flag.Bool("summary", true, "imprime el resumen de la corrida")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		return exitUsage
	}
	if *parallel {
		cfg.Pipeline.ParallelBranches = true
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	date := time.Now().UTC()
	if *dateFlag != "" {
		if date, err = time.Parse(entity.DateLayout, *dateFlag); err != nil {
			fmt.Fprintln(os.Stderr, "fecha inválida, use YYYY-MM-DD:", *dateFlag)
			return exitUsage
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("armar pipeline")
		return exitFailed
	}
	defer pipeline.Close()
	uc := pipeline.UseCase

	switch {
	case *validateOnly:
		report, err := uc.Preflight(ctx, date)
		fmt.Printf("orders: %d  stock: %d  master_data_ok: %t\n",
			len(report.OrderSources), len(report.StockSources), report.MasterDataOK)
		for _, p := range report.Problems {
			fmt.Println("  -", p)
		}
		if err != nil {
			return exitFailed
		}
		return exitOK

	case *replay > 0:
		results, err := uc.Replay(ctx, date, *replay)
		if err != nil {
			log.Error().Err(err).Msg("replay")
			return exitFailed
		}
		code := exitOK
		for _, r := range results {
			status := "SUCCESS"
			if r.Err != nil {
				status, code = "FAILED: "+r.Err.Error(), exitFailed
			}
			fmt.Printf("%s  %s\n", r.Date.Format(entity.DateLayout), status)
		}
		return code

	default:
		runRes, err := uc.Run(ctx, appprocurement.RunRequest{Date: date, SkipValidation: *skipValidation})
		if errors.Is(err, domain.ErrRunInProgress) {
			log.Warn().Str("date", date.Format(entity.DateLayout)).Msg("ya hay una corrida en curso")
			return exitInProgress
		}
		if runRes != nil && *summary {
			fmt.Print(dto.RunSummaryText(dto.FromPipelineRun(runRes)))
		}
		if err != nil {
			return exitFailed
		}
		return exitOK
	}
}
