package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPriority prioridad de una orden de compra según volumen.
type OrderPriority string

const (
	PriorityNormal OrderPriority = "NORMAL"
	PriorityMedium OrderPriority = "MEDIUM"
	PriorityHigh   OrderPriority = "HIGH"
)

// OrderStatus estado de la orden emitida.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
)

// SupplierOrder orden de compra consolidada para un proveedor en una fecha de corrida.
type SupplierOrder struct {
	OrderID               string
	SupplierID            string
	SupplierName          string
	OrderDate             time.Time
	RequestedDeliveryDate time.Time
	Status                OrderStatus
	Priority              OrderPriority
	Items                 []SupplierOrderLine
	Summary               OrderSummary
}

// SupplierOrderLine línea de la orden (una por SKU).
type SupplierOrderLine struct {
	LineNumber      int
	SKU             string
	ProductName     string
	Category        string
	QuantityOrdered int64
	Cases           int64 // ceil(QuantityOrdered / CaseSize); con MOQ la última caja puede ir incompleta
	CaseSize        int64
	NetDemand       int64
	AvailableStock  int64
	TotalDemand     int64
	UnitPrice       decimal.Decimal
	EstimatedValue  decimal.Decimal // QuantityOrdered * UnitPrice
}

// OrderSummary totales de la orden; siempre derivados de Items.
type OrderSummary struct {
	TotalLineItems      int
	TotalUnits          int64
	TotalCases          int64
	TotalEstimatedValue decimal.Decimal
}
