package procurement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/domain/repository"
	"github.com/jhoicas/procurement-pipeline/pkg/logger"
)

// RunRequest parámetros de una corrida.
type RunRequest struct {
	Date           time.Time
	SkipValidation bool
}

// Options ajustes del orquestador.
type Options struct {
	Config           procurement.Config
	ParallelBranches bool // exporta órdenes y genera el reporte en paralelo
	Now              func() time.Time
}

// PipelineUseCase orquesta las etapas de la corrida diaria:
// preflight → validación → cálculo de demanda → órdenes a proveedores → reporte de excepciones.
// Es el único componente con el que hablan el scheduler, la CLI y la API HTTP.
type PipelineUseCase struct {
	raw       repository.RawInputRepository
	master    repository.MasterDataRepository
	artifacts repository.ArtifactRepository
	locker    RunLocker
	renderer  OrderRenderer
	cfg       procurement.Config
	parallel  bool
	now       func() time.Time
	log       *logger.Logger

	mu     sync.Mutex
	active map[string]*RunContext
}

// NewPipelineUseCase construye el orquestador. renderer puede ser nil (sin PDFs);
// si locker es nil se usa un DateLocker en memoria.
func NewPipelineUseCase(
	raw repository.RawInputRepository,
	master repository.MasterDataRepository,
	artifacts repository.ArtifactRepository,
	locker RunLocker,
	renderer OrderRenderer,
	log *logger.Logger,
	opts Options,
) *PipelineUseCase {
	if locker == nil {
		locker = NewDateLocker()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &PipelineUseCase{
		raw:       raw,
		master:    master,
		artifacts: artifacts,
		locker:    locker,
		renderer:  renderer,
		cfg:       opts.Config,
		parallel:  opts.ParallelBranches,
		now:       now,
		log:       log,
		active:    make(map[string]*RunContext),
	}
}

// Run ejecuta la corrida completa para una fecha. Siempre devuelve el resumen de la
// corrida (también cuando falla) salvo que la fecha ya tenga una corrida activa, en cuyo
// caso devuelve domain.ErrRunInProgress sin resumen.
func (uc *PipelineUseCase) Run(ctx context.Context, req RunRequest) (*entity.PipelineRun, error) {
	date := procurement.DateOnly(req.Date)
	dateStr := date.Format(entity.DateLayout)

	release, err := uc.locker.Acquire(ctx, date)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("date", dateStr).Msg("liberar lock de corrida")
		}
	}()

	rc := newRunContext(req, date, uc.log.With().Str("date", dateStr).Logger(), uc.now)
	uc.track(dateStr, rc)
	defer uc.untrack(dateStr)

	rc.Log.Info().Bool("skip_validation", req.SkipValidation).Bool("parallel", uc.parallel).Msg("corrida iniciada")

	runErr := uc.execute(ctx, rc)
	run := rc.finish(runErr)

	if _, err := uc.artifacts.SaveRunSummary(context.WithoutCancel(ctx), &run); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("guardar resumen de corrida: %w", err))
	}

	ev := rc.Log.Info()
	if runErr != nil {
		ev = rc.Log.Error().Err(runErr)
	}
	ev.Str("status", string(run.Status)).Dur("duration", run.FinishedAt.Sub(run.StartedAt)).Msg("corrida finalizada")
	return &run, runErr
}

func (uc *PipelineUseCase) execute(ctx context.Context, rc *RunContext) error {
	// 1. Preflight: si falla no se intenta ninguna etapa
	preOut, pre := runStage(rc, entity.StagePreflight, func() StageOutcome[PreflightReport] {
		report, err := uc.Preflight(ctx, rc.Date)
		counts := map[string]int64{
			"order_sources": int64(len(report.OrderSources)),
			"stock_sources": int64(len(report.StockSources)),
		}
		if err != nil {
			return failed[PreflightReport](err, counts)
		}
		return succeeded(report, counts)
	})
	rc.Record(pre)
	if !preOut.OK {
		return preOut.Err
	}

	// 2. Validación
	rc.SetStatus(entity.RunValidating)
	var inputs *Inputs
	if rc.Request.SkipValidation {
		rc.Skip(entity.StageValidation)
	} else {
		out, res := runStage(rc, entity.StageValidation, func() StageOutcome[Inputs] { return uc.Validate(ctx, rc) })
		rc.Record(res)
		if !out.OK {
			rc.Skip(entity.StageDemandComputation, entity.StageSupplierExport, entity.StageExceptionReport)
			return fmt.Errorf("validación: %w", out.Err)
		}
		inputs = &out.Result
	}

	// 3. Cálculo de demanda
	rc.SetStatus(entity.RunComputingDemand)
	calc, res := runStage(rc, entity.StageDemandComputation, func() StageOutcome[procurement.CalculationResult] {
		return uc.ComputeDemand(ctx, rc, inputs)
	})
	rc.Record(res)
	if !calc.OK {
		rc.Skip(entity.StageSupplierExport, entity.StageExceptionReport)
		return fmt.Errorf("cálculo de demanda: %w", calc.Err)
	}

	// 4 y 5. Consumidores finales sobre los mismos registros inmutables
	if uc.parallel {
		return uc.runBranches(ctx, rc, calc.Result)
	}

	rc.SetStatus(entity.RunExporting)
	exp, res := runStage(rc, entity.StageSupplierExport, func() StageOutcome[procurement.OrderBuildResult] {
		return uc.ExportOrders(ctx, rc, calc.Result)
	})
	rc.Record(res)
	if !exp.OK {
		rc.Skip(entity.StageExceptionReport)
		return fmt.Errorf("exportación de órdenes: %w", exp.Err)
	}

	rc.SetStatus(entity.RunReporting)
	rep, res := runStage(rc, entity.StageExceptionReport, func() StageOutcome[entity.ExceptionReport] {
		return uc.ReportExceptions(ctx, rc, calc.Result)
	})
	rc.Record(res)
	if !rep.OK {
		return fmt.Errorf("reporte de excepciones: %w", rep.Err)
	}
	return nil
}

// runBranches ejecuta exportación y reporte de forma concurrente. Las ramas no se
// cancelan entre sí: cada una termina y queda registrada con su propio resultado.
func (uc *PipelineUseCase) runBranches(ctx context.Context, rc *RunContext, calc procurement.CalculationResult) error {
	rc.SetStatus(entity.RunExporting)

	var (
		g                    errgroup.Group
		expResult, repResult entity.StageResult
	)
	g.Go(func() error {
		out, res := runStage(rc, entity.StageSupplierExport, func() StageOutcome[procurement.OrderBuildResult] {
			return uc.ExportOrders(ctx, rc, calc)
		})
		expResult = res
		if !out.OK {
			return fmt.Errorf("exportación de órdenes: %w", out.Err)
		}
		return nil
	})
	g.Go(func() error {
		out, res := runStage(rc, entity.StageExceptionReport, func() StageOutcome[entity.ExceptionReport] {
			return uc.ReportExceptions(ctx, rc, calc)
		})
		repResult = res
		if !out.OK {
			return fmt.Errorf("reporte de excepciones: %w", out.Err)
		}
		return nil
	})
	err := g.Wait()

	rc.Record(expResult)
	rc.Record(repResult)
	if err == nil {
		rc.SetStatus(entity.RunReporting)
	}
	return err
}

// ── Preflight ────────────────────────────────────────────────────────────────

// PreflightReport resultado de la verificación de infraestructura.
type PreflightReport struct {
	Date         time.Time
	OrderSources []string
	StockSources []string
	MasterDataOK bool
	Problems     []string
}

// Preflight verifica que existan datos crudos para la fecha y que la fuente de datos
// maestros responda. Devuelve domain.ErrInfrastructure (envuelto) si algo falta.
func (uc *PipelineUseCase) Preflight(ctx context.Context, date time.Time) (PreflightReport, error) {
	date = procurement.DateOnly(date)
	report := PreflightReport{Date: date}

	inv, err := uc.raw.Probe(ctx, date)
	if err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("datos crudos no disponibles: %v", err))
	} else {
		report.OrderSources = inv.OrderSources
		report.StockSources = inv.StockSources
		if len(inv.OrderSources) == 0 {
			report.Problems = append(report.Problems, "no hay archivos de órdenes para la fecha")
		}
		if len(inv.StockSources) == 0 {
			report.Problems = append(report.Problems, "no hay archivos de stock para la fecha")
		}
	}

	if err := uc.master.Ping(ctx); err != nil {
		report.Problems = append(report.Problems, fmt.Sprintf("datos maestros no disponibles: %v", err))
	} else {
		report.MasterDataOK = true
	}

	if len(report.Problems) > 0 {
		for _, p := range report.Problems {
			uc.log.Warn().Str("date", date.Format(entity.DateLayout)).Msg(p)
		}
		return report, fmt.Errorf("%w: %s", domain.ErrInfrastructure, strings.Join(report.Problems, "; "))
	}
	return report, nil
}

// ── Replay ───────────────────────────────────────────────────────────────────

// ReplayResult resultado de una fecha dentro de un replay.
type ReplayResult struct {
	Date time.Time
	Run  *entity.PipelineRun
	Err  error
}

// Replay ejecuta la corrida para los N días anteriores a endDate, en orden cronológico
// y con validación omitida. Un fallo en una fecha no detiene las siguientes.
func (uc *PipelineUseCase) Replay(ctx context.Context, endDate time.Time, days int) ([]ReplayResult, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: days debe ser positivo", domain.ErrInvalidInput)
	}
	endDate = procurement.DateOnly(endDate)
	results := make([]ReplayResult, 0, days)
	for i := days; i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		date := endDate.AddDate(0, 0, -i)
		run, err := uc.Run(ctx, RunRequest{Date: date, SkipValidation: true})
		results = append(results, ReplayResult{Date: date, Run: run, Err: err})
	}

	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	uc.log.Info().Int("successful", ok).Int("days", days).Msg("replay finalizado")
	return results, nil
}

// ── Consulta ─────────────────────────────────────────────────────────────────

// GetRun devuelve el estado de la corrida de la fecha: la activa si está en curso o el
// último resumen persistido. domain.ErrNotFound si nunca se ejecutó.
func (uc *PipelineUseCase) GetRun(ctx context.Context, date time.Time) (*entity.PipelineRun, error) {
	date = procurement.DateOnly(date)
	uc.mu.Lock()
	rc, ok := uc.active[date.Format(entity.DateLayout)]
	uc.mu.Unlock()
	if ok {
		snap := rc.Snapshot()
		return &snap, nil
	}
	return uc.artifacts.LoadRunSummary(ctx, date)
}

func (uc *PipelineUseCase) track(key string, rc *RunContext) {
	uc.mu.Lock()
	uc.active[key] = rc
	uc.mu.Unlock()
}

func (uc *PipelineUseCase) untrack(key string) {
	uc.mu.Lock()
	delete(uc.active, key)
	uc.mu.Unlock()
}
