package procurement

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
	"github.com/jhoicas/procurement-pipeline/internal/domain/procurement"
)

// RunContext estado mutable de una sola corrida: etapa actual, resultados por etapa y
// problemas de calidad acumulados. Se pasa explícitamente a cada etapa; dos corridas
// de fechas distintas nunca comparten un RunContext.
type RunContext struct {
	Date    time.Time
	Request RunRequest
	Log     zerolog.Logger

	now func() time.Time
	mu  sync.Mutex
	run entity.PipelineRun
}

func newRunContext(req RunRequest, date time.Time, log zerolog.Logger, now func() time.Time) *RunContext {
	return &RunContext{
		Date:    date,
		Request: req,
		Log:     log,
		now:     now,
		run: entity.PipelineRun{
			RunID:          entity.RunIDFor(date),
			ProcessingDate: date,
			Status:         entity.RunPending,
			Stages:         make([]entity.StageResult, 0, 5),
			StartedAt:      now(),
		},
	}
}

// SetStatus avanza la máquina de estados de la corrida.
func (rc *RunContext) SetStatus(s entity.RunStatus) {
	rc.mu.Lock()
	rc.run.Status = s
	rc.mu.Unlock()
	rc.Log.Debug().Str("status", string(s)).Msg("estado de corrida")
}

// Record agrega el resultado de una etapa en el orden de llamada.
func (rc *RunContext) Record(res entity.StageResult) {
	rc.mu.Lock()
	rc.run.Stages = append(rc.run.Stages, res)
	rc.mu.Unlock()
}

// Skip marca las etapas como SKIPPED sin ejecutarlas.
func (rc *RunContext) Skip(stages ...entity.StageName) {
	at := rc.now()
	for _, name := range stages {
		rc.Record(entity.StageResult{Name: name, Status: entity.StageSkipped, StartedAt: at, FinishedAt: at})
	}
}

// AddIssues acumula problemas de calidad de datos; quedan completos en el resumen.
func (rc *RunContext) AddIssues(issues ...procurement.ValidationIssue) {
	rc.mu.Lock()
	for _, is := range issues {
		rc.run.Issues = append(rc.run.Issues, is.RunIssue())
	}
	rc.mu.Unlock()
}

// Snapshot copia profunda del estado actual (para consultas mientras la corrida avanza).
func (rc *RunContext) Snapshot() entity.PipelineRun {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := rc.run
	out.Stages = make([]entity.StageResult, len(rc.run.Stages))
	for i, s := range rc.run.Stages {
		c := s
		if s.Counts != nil {
			c.Counts = make(map[string]int64, len(s.Counts))
			for k, v := range s.Counts {
				c.Counts[k] = v
			}
		}
		out.Stages[i] = c
	}
	out.Issues = append([]entity.RunIssue(nil), rc.run.Issues...)
	return out
}

// finish cierra la corrida en SUCCESS o FAILED según runErr.
func (rc *RunContext) finish(runErr error) entity.PipelineRun {
	rc.mu.Lock()
	rc.run.FinishedAt = rc.now()
	if runErr != nil {
		rc.run.Status = entity.RunFailed
		rc.run.Error = runErr.Error()
	} else {
		rc.run.Status = entity.RunSuccess
	}
	rc.mu.Unlock()
	return rc.Snapshot()
}
