// Package pdf genera la representación imprimible de una orden de compra.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Proveedor + ID      │  N° Orden + Fecha + Entrega   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ESTADO / PRIORIDAD                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | SKU | Producto | Cajas | Unidades | P.Unit | Valor│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Líneas / Cajas / Unidades / VALOR ESTIMADO         │
//	│  FOOTER: QR con el N° de orden + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-pipeline/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 176, Green: 32, Blue: 32}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoOrderRenderer implementa procurement.OrderRenderer usando Maroto v2.
type MarotoOrderRenderer struct {
	company string
}

// NewMarotoOrderRenderer construye el renderer; company aparece como emisor de la orden.
func NewMarotoOrderRenderer(company string) *MarotoOrderRenderer {
	return &MarotoOrderRenderer{company: company}
}

// Render genera el PDF de la orden y devuelve sus bytes.
func (g *MarotoOrderRenderer) Render(order entity.SupplierOrder) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Orden de compra "+order.OrderID, true).
		WithAuthor(nonEmpty(g.company, "procurement_pipeline"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order, g.company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(statusRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(order.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(order.Summary))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar orden %s: %w", order.OrderID, err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: proveedor (izq) y N° de orden + fechas (der).
func headerRow(order entity.SupplierOrder, company string) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(nonEmpty(order.SupplierName, "Proveedor sin nombre"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Proveedor: "+nonEmpty(order.SupplierID, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
			text.New("Emisor: "+nonEmpty(company, "—"), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ORDEN DE COMPRA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(order.OrderID, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+order.OrderDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
			text.New("Entrega solicitada: "+order.RequestedDeliveryDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 16, Color: colorGray,
			}),
		),
	)
}

// statusRow: estado y prioridad; la prioridad HIGH se resalta.
func statusRow(order entity.SupplierOrder) core.Row {
	prioColor := colorGray
	if order.Priority == entity.PriorityHigh {
		prioColor = colorAlert
	}
	return row.New(8).Add(
		col.New(6).Add(text.New("Estado: "+string(order.Status), props.Text{
			Size: 9, Top: 2,
		})),
		col.New(6).Add(text.New("Prioridad: "+string(order.Priority), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: prioColor, Top: 2,
		})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Cajas", 1, align.Center),
		h("Unidades", 1, align.Right),
		h("P. Unit.", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

// tableItemRows: una fila por línea de la orden.
func tableItemRows(items []entity.SupplierOrderLine) []core.Row {
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			cell(fmt.Sprint(it.LineNumber), 1, align.Center),
			cell(it.SKU, 2, align.Left),
			cell(nonEmpty(it.ProductName, "Unknown"), 3, align.Left),
			cell(fmt.Sprintf("%d x %d", it.Cases, it.CaseSize), 1, align.Center),
			cell(formatThousands(it.QuantityOrdered), 1, align.Right),
			cell("$"+it.UnitPrice.StringFixed(2), 2, align.Right),
			cell("$"+formatMoney(it.EstimatedValue), 2, align.Right),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(s entity.OrderSummary) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Líneas:"),
			label("Cajas:"),
			label("Unidades:"),
			text.New("VALOR ESTIMADO:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
		),
		col.New(3).Add(
			value(fmt.Sprint(s.TotalLineItems)),
			value(formatThousands(s.TotalCases)),
			value(formatThousands(s.TotalUnits)),
			text.New("$"+formatMoney(s.TotalEstimatedValue), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

// footerRow: QR con el N° de orden para la recepción en bodega.
func footerRow(order entity.SupplierOrder) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(order.OrderID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Escanee el código al recibir la mercancía.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Cantidades en múltiplos de caja; respetar el mínimo de pedido del proveedor.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney valor con dos decimales y comas de miles. Ej: 25000.5 → "25,000.50"
func formatMoney(v decimal.Decimal) string {
	s := v.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	sign := ""
	if len(intPart) > 0 && intPart[0] == '-' {
		sign, intPart = "-", intPart[1:]
	}
	return sign + groupDigits(intPart) + frac
}

func formatThousands(n int64) string {
	if n < 0 {
		return "-" + groupDigits(fmt.Sprint(-n))
	}
	return groupDigits(fmt.Sprint(n))
}

// groupDigits inserta comas de miles en un string de dígitos.
func groupDigits(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
