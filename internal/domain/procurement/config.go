package procurement

// Thresholds umbrales de las reglas de excepción. Son configurables por operadores.
type Thresholds struct {
	HighDemand         int64   // T: demanda total que dispara HIGH_DEMAND
	HighDemandCritical float64 // multiplicador de T para severidad CRITICAL
	LowStockRatio      float64 // R_low: stock/demanda bajo este valor dispara LOW_STOCK
	CriticalStockRatio float64 // R_critical: stock/demanda bajo este valor es CRITICAL
	HighValueUnits     int64   // U: order_quantity que dispara HIGH_VALUE_ORDER
	DemandGapRatio     float64 // net_demand/stock sobre este valor dispara DEMAND_STOCK_GAP
}

// OrderPolicy reglas de construcción de órdenes por proveedor.
type OrderPolicy struct {
	LeadTimeDays        int   // días entre la orden y la entrega solicitada
	HighPriorityUnits   int64 // unidades sobre las cuales la orden es HIGH
	MediumPriorityUnits int64 // unidades sobre las cuales la orden es MEDIUM
}

// Config configuración completa del motor de demanda.
type Config struct {
	Thresholds Thresholds
	Orders     OrderPolicy
}

// Valores por defecto.
const (
	DefaultHighDemandThreshold = 2000
	DefaultHighDemandCritical  = 1.5
	DefaultLowStockRatio       = 0.3
	DefaultCriticalStockRatio  = 0.1
	DefaultHighValueUnits      = 5000
	DefaultDemandGapRatio      = 3.0
	DefaultLeadTimeDays        = 2
	DefaultHighPriorityUnits   = 5000
	DefaultMediumPriorityUnits = 2000
)

// DefaultConfig devuelve la configuración con los valores por defecto.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Orders:     DefaultOrderPolicy(),
	}
}

// DefaultThresholds umbrales por defecto de las reglas de excepción.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighDemand:         DefaultHighDemandThreshold,
		HighDemandCritical: DefaultHighDemandCritical,
		LowStockRatio:      DefaultLowStockRatio,
		CriticalStockRatio: DefaultCriticalStockRatio,
		HighValueUnits:     DefaultHighValueUnits,
		DemandGapRatio:     DefaultDemandGapRatio,
	}
}

// DefaultOrderPolicy política de órdenes por defecto.
func DefaultOrderPolicy() OrderPolicy {
	return OrderPolicy{
		LeadTimeDays:        DefaultLeadTimeDays,
		HighPriorityUnits:   DefaultHighPriorityUnits,
		MediumPriorityUnits: DefaultMediumPriorityUnits,
	}
}
