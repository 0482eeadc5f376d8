package entity

// ExceptionType tipo de anomalía detectada.
type ExceptionType string

const (
	ExceptionHighDemand      ExceptionType = "HIGH_DEMAND"
	ExceptionLowStock        ExceptionType = "LOW_STOCK"
	ExceptionMissingSupplier ExceptionType = "MISSING_SUPPLIER"
	ExceptionHighValueOrder  ExceptionType = "HIGH_VALUE_ORDER"
	ExceptionDemandStockGap  ExceptionType = "DEMAND_STOCK_GAP"
)

// ExceptionTypes orden canónico de los tipos (usado en resúmenes).
var ExceptionTypes = []ExceptionType{
	ExceptionHighDemand,
	ExceptionLowStock,
	ExceptionMissingSupplier,
	ExceptionHighValueOrder,
	ExceptionDemandStockGap,
}

// Severity severidad de un hallazgo.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities orden canónico, de más a menos grave.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank devuelve el rango de la severidad (1 = más grave). Valores desconocidos van al final.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 1
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 4
	default:
		return 99
	}
}

// ExceptionFinding hallazgo producido por una regla sobre un ReplenishmentRecord.
// MetricValue y Threshold son nil cuando la regla no es numérica (ej. MISSING_SUPPLIER).
type ExceptionFinding struct {
	Type           ExceptionType
	Severity       Severity
	SKU            string
	ProductName    string
	Category       string
	SupplierName   string
	MetricValue    *float64
	Threshold      *float64
	Description    string
	Recommendation string
}

// ExceptionSummary estadísticas calculadas una sola vez sobre el conjunto final de hallazgos.
type ExceptionSummary struct {
	TotalSKUsAnalyzed  int
	TotalExceptions    int
	BySeverity         map[Severity]int
	ByType             map[ExceptionType]int
	TotalDemand        int64
	TotalOrderQuantity int64
	UniqueSuppliers    int
}

// ExceptionReport reporte de excepciones de una corrida.
type ExceptionReport struct {
	Summary  ExceptionSummary
	Findings []ExceptionFinding
}
