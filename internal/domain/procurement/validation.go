package procurement

import (
	"fmt"
	"strings"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// IssueLevel gravedad de un problema de calidad de datos.
type IssueLevel string

const (
	IssueError   IssueLevel = "ERROR"   // el registro se excluye
	IssueWarning IssueLevel = "WARNING" // el registro se conserva
)

// ValidationIssue problema de forma detectado en un registro o archivo de entrada.
type ValidationIssue struct {
	Level   IssueLevel
	Source  string // archivo u origen lógico
	Index   int    // posición del registro dentro del origen; -1 si aplica al archivo
	Field   string
	Message string
}

func (i ValidationIssue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("[%s] %s: %s", i.Level, i.Source, i.Message)
	}
	return fmt.Sprintf("[%s] %s#%d %s: %s", i.Level, i.Source, i.Index, i.Field, i.Message)
}

// RunIssue copia del problema para el resumen de la corrida.
func (i ValidationIssue) RunIssue() entity.RunIssue {
	return entity.RunIssue{Level: string(i.Level), Source: i.Source, Index: i.Index, Field: i.Field, Message: i.Message}
}

// ValidationReport acumula los problemas de una corrida.
type ValidationReport struct {
	Issues []ValidationIssue
}

// Add agrega problemas al reporte.
func (r *ValidationReport) Add(issues ...ValidationIssue) {
	r.Issues = append(r.Issues, issues...)
}

// Errors cantidad de problemas que excluyeron registros.
func (r ValidationReport) Errors() int { return r.count(IssueError) }

// Warnings cantidad de advertencias.
func (r ValidationReport) Warnings() int { return r.count(IssueWarning) }

func (r ValidationReport) count(level IssueLevel) int {
	n := 0
	for _, i := range r.Issues {
		if i.Level == level {
			n++
		}
	}
	return n
}

// ValidateOrderLines descarta las líneas con SKU vacío, cantidad <= 0 o precio
// negativo. Devuelve las líneas válidas en su orden original.
func ValidateOrderLines(source string, lines []entity.OrderLine) ([]entity.OrderLine, []ValidationIssue) {
	valid := make([]entity.OrderLine, 0, len(lines))
	var issues []ValidationIssue
	for idx, l := range lines {
		var problems []ValidationIssue
		if strings.TrimSpace(l.SKU) == "" {
			problems = append(problems, issueAt(IssueError, source, idx, "sku", "SKU requerido"))
		}
		if l.Quantity <= 0 {
			problems = append(problems, issueAt(IssueError, source, idx, "quantity",
				fmt.Sprintf("cantidad debe ser un entero positivo, recibido %d", l.Quantity)))
		}
		if l.UnitPrice.IsNegative() {
			problems = append(problems, issueAt(IssueError, source, idx, "price",
				fmt.Sprintf("precio no puede ser negativo, recibido %s", l.UnitPrice.String())))
		}
		if strings.TrimSpace(l.OriginLocation) == "" {
			problems = append(problems, issueAt(IssueWarning, source, idx, "pos_id", "punto de venta vacío"))
		}
		issues = append(issues, problems...)
		if !hasError(problems) {
			valid = append(valid, l)
		}
	}
	return valid, issues
}

// ValidateStockRecords descarta registros sin SKU o sin bodega. El stock negativo se
// reporta como advertencia y el registro se conserva.
func ValidateStockRecords(source string, records []entity.StockRecord) ([]entity.StockRecord, []ValidationIssue) {
	valid := make([]entity.StockRecord, 0, len(records))
	var issues []ValidationIssue
	for idx, r := range records {
		var problems []ValidationIssue
		if strings.TrimSpace(r.SKU) == "" {
			problems = append(problems, issueAt(IssueError, source, idx, "sku", "SKU requerido"))
		}
		if strings.TrimSpace(r.Location) == "" {
			problems = append(problems, issueAt(IssueError, source, idx, "warehouse_id", "bodega requerida"))
		}
		if r.QuantityOnHand < 0 {
			problems = append(problems, issueAt(IssueWarning, source, idx, "quantity_on_hand",
				fmt.Sprintf("stock negativo: %d", r.QuantityOnHand)))
		}
		issues = append(issues, problems...)
		if !hasError(problems) {
			valid = append(valid, r)
		}
	}
	return valid, issues
}

// FileIssue problema que afecta a un archivo completo (columnas faltantes, JSON inválido).
func FileIssue(level IssueLevel, source, message string) ValidationIssue {
	return ValidationIssue{Level: level, Source: source, Index: -1, Message: message}
}

// RecordIssue problema de un registro concreto detectado al leer la fuente.
func RecordIssue(level IssueLevel, source string, index int, field, message string) ValidationIssue {
	return issueAt(level, source, index, field, message)
}

func issueAt(level IssueLevel, source string, index int, field, message string) ValidationIssue {
	return ValidationIssue{Level: level, Source: source, Index: index, Field: field, Message: message}
}

func hasError(issues []ValidationIssue) bool {
	for _, i := range issues {
		if i.Level == IssueError {
			return true
		}
	}
	return false
}
