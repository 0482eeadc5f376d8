package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-pipeline/internal/application/dto"
	appprocurement "github.com/jhoicas/procurement-pipeline/internal/application/procurement"
	"github.com/jhoicas/procurement-pipeline/internal/domain"
	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// pipelineRunner contrato del orquestador que usa el handler; lo implementa
// *procurement.PipelineUseCase.
type pipelineRunner interface {
	Run(ctx context.Context, req appprocurement.RunRequest) (*entity.PipelineRun, error)
	Preflight(ctx context.Context, date time.Time) (appprocurement.PreflightReport, error)
	Replay(ctx context.Context, endDate time.Time, days int) ([]appprocurement.ReplayResult, error)
	GetRun(ctx context.Context, date time.Time) (*entity.PipelineRun, error)
}

// maxReplayDays tope de días de un replay vía HTTP (la corrida es síncrona).
const maxReplayDays = 31

// PipelineHandler expone las corridas del pipeline de reposición.
type PipelineHandler struct {
	uc  pipelineRunner
	now func() time.Time
}

// NewPipelineHandler construye el handler.
func NewPipelineHandler(uc pipelineRunner) *PipelineHandler {
	return &PipelineHandler{uc: uc, now: func() time.Time { return time.Now().UTC() }}
}

// Run ejecuta la corrida de la fecha de forma síncrona y devuelve su resumen.
// POST /api/pipeline/runs
//   - 200 → SUCCESS
//   - 409 → ya hay una corrida en curso para la fecha
//   - 422 → la corrida terminó en FAILED (el cuerpo trae el resumen)
//   - 503 → preflight fallido
func (h *PipelineHandler) Run(c *fiber.Ctx) error {
	var in dto.RunPipelineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, err := h.parseDate(in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
	}

	run, err := h.uc.Run(c.UserContext(), appprocurement.RunRequest{Date: date, SkipValidation: in.SkipValidation})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RUN_IN_PROGRESS", Message: err.Error()})
		case run == nil:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		case errors.Is(err, domain.ErrInfrastructure):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.FromPipelineRun(run))
		default:
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.FromPipelineRun(run))
		}
	}
	return c.JSON(dto.FromPipelineRun(run))
}

// GetRun devuelve el estado de la corrida de la fecha (en curso o la última persistida).
// GET /api/pipeline/runs/:date
func (h *PipelineHandler) GetRun(c *fiber.Ctx) error {
	date, err := time.Parse(entity.DateLayout, c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
	}
	run, err := h.uc.GetRun(c.UserContext(), date)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay corrida para la fecha"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.FromPipelineRun(run))
}

// Preflight verifica entradas e infraestructura sin ejecutar la corrida.
// POST /api/pipeline/preflight
func (h *PipelineHandler) Preflight(c *fiber.Ctx) error {
	var in dto.RunPipelineRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	date, err := h.parseDate(in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
	}

	report, err := h.uc.Preflight(c.UserContext(), date)
	out := dto.PreflightResponse{
		Date:         date.Format(entity.DateLayout),
		Ready:        err == nil,
		OrderSources: nonNil(report.OrderSources),
		StockSources: nonNil(report.StockSources),
		MasterDataOK: report.MasterDataOK,
		Problems:     report.Problems,
	}
	if err != nil && !errors.Is(err, domain.ErrInfrastructure) {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Replay re-ejecuta los N días anteriores a end_date.
// POST /api/pipeline/replay
func (h *PipelineHandler) Replay(c *fiber.Ctx) error {
	var in dto.ReplayRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Days <= 0 || in.Days > maxReplayDays {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "days debe estar entre 1 y 31"})
	}
	end, err := h.parseDate(in.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "end_date debe tener formato YYYY-MM-DD"})
	}

	results, err := h.uc.Replay(c.UserContext(), end, in.Days)
	if err != nil && results == nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.ReplayResponse{Days: in.Days, Results: make([]dto.ReplayItemDTO, 0, len(results))}
	for _, r := range results {
		item := dto.ReplayItemDTO{Date: r.Date.Format(entity.DateLayout)}
		if r.Run != nil {
			d := dto.FromPipelineRun(r.Run)
			item.Run = &d
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		} else {
			out.Successful++
		}
		out.Results = append(out.Results, item)
	}
	return c.JSON(out)
}

// parseDate YYYY-MM-DD; vacío = hoy (UTC).
func (h *PipelineHandler) parseDate(s string) (time.Time, error) {
	if s == "" {
		n := h.now()
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(entity.DateLayout, s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
