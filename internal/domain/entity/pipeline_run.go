package entity

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus estado de la máquina de estados de una corrida.
type RunStatus string

const (
	RunPending         RunStatus = "PENDING"
	RunValidating      RunStatus = "VALIDATING"
	RunComputingDemand RunStatus = "COMPUTING_DEMAND"
	RunExporting       RunStatus = "EXPORTING"
	RunReporting       RunStatus = "REPORTING"
	RunSuccess         RunStatus = "SUCCESS"
	RunFailed          RunStatus = "FAILED"
)

// IsTerminal indica si el estado es final (SUCCESS o FAILED).
func (s RunStatus) IsTerminal() bool {
	return s == RunSuccess || s == RunFailed
}

// StageName nombre estable de cada etapa del pipeline.
type StageName string

const (
	StagePreflight         StageName = "preflight"
	StageValidation        StageName = "validation"
	StageDemandComputation StageName = "demand_computation"
	StageSupplierExport    StageName = "supplier_export"
	StageExceptionReport   StageName = "exception_report"
)

// StageStatus resultado de una etapa.
type StageStatus string

const (
	StageSuccess StageStatus = "SUCCESS"
	StageFailed  StageStatus = "FAILED"
	StageSkipped StageStatus = "SKIPPED"
)

// StageResult registro independiente de cada etapa ejecutada (o saltada).
type StageResult struct {
	Name       StageName
	Status     StageStatus
	Counts     map[string]int64
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// PipelineRun resumen estructurado de una corrida; se produce siempre, exitosa o no.
type PipelineRun struct {
	RunID          string
	ProcessingDate time.Time
	Status         RunStatus
	Stages         []StageResult
	StartedAt      time.Time
	FinishedAt     time.Time
	Error          string
	Issues         []RunIssue // problemas de calidad de datos detectados al validar
}

// RunIssue problema de calidad de datos registrado en el resumen de la corrida.
// Index es -1 cuando el problema afecta al archivo completo.
type RunIssue struct {
	Level   string
	Source  string
	Index   int
	Field   string
	Message string
}

// Stage devuelve el resultado de la etapa indicada, si existe.
func (r *PipelineRun) Stage(name StageName) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageResult{}, false
}

// runNamespace espacio de nombres para los UUID deterministas de corrida.
var runNamespace = uuid.MustParse("6f1c2a8e-3d4b-5c6d-9e0f-1a2b3c4d5e6f")

// DateLayout formato de fecha de proceso (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// RunIDFor devuelve un UUID determinista para la fecha de proceso: la misma fecha
// siempre produce el mismo RunID.
func RunIDFor(date time.Time) string {
	return uuid.NewSHA1(runNamespace, []byte(date.Format(DateLayout))).String()
}
