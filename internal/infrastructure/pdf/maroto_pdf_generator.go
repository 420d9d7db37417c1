// Package pdf genera el reporte de existencias en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos / lotes / entradas / salidas / valor     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Grado | Unidad | Lotes | Cantidad | Valor │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
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
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// DefaultLocale locale usado cuando la configuración no trae uno válido.
const DefaultLocale = "es-CO"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa analytics.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	printer *message.Printer
}

// NewMarotoReportGenerator construye el generador. Las cifras se formatean según locale.
func NewMarotoReportGenerator(locale string) *MarotoReportGenerator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &MarotoReportGenerator{printer: message.NewPrinter(tag)}
}

// StockReport genera el PDF del resumen de existencias y devuelve sus bytes.
func (g *MarotoReportGenerator) StockReport(overview *dto.OverviewResponse) ([]byte, error) {
	if overview == nil {
		return nil, fmt.Errorf("pdf: overview nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de existencias", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(overview))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.summaryRow(&overview.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.productRows(overview.Products) {
		m.AddRows(r)
	}
	if len(overview.Products) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin existencias registradas.", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReportGenerator) headerRow(overview *dto.OverviewResponse) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("REPORTE DE EXISTENCIAS POR LOTE", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+overview.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

func (g *MarotoReportGenerator) summaryRow(s *dto.StockSummaryResponse) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 9, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("Productos", g.printer.Sprintf("%d", s.TotalProducts)),
		cell("Lotes", g.printer.Sprintf("%d", s.LotCount)),
		cell("Entradas", g.quantity(s.TotalIn)),
		cell("Salidas", g.quantity(s.TotalOut)),
		cell("Stock", g.quantity(s.TotalStock)),
		cell("Valor", "$"+g.money(s.TotalStockValue)),
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
		h("Producto", 4, align.Left),
		h("Grado", 2, align.Left),
		h("Unidad", 1, align.Center),
		h("Lotes", 1, align.Center),
		h("Cantidad", 2, align.Right),
		h("Valor", 2, align.Right),
	)
}

func (g *MarotoReportGenerator) productRows(products []dto.ProductStockSummary) []core.Row {
	result := make([]core.Row, 0, len(products))
	for _, p := range products {
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(p.MaterialGrade, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(p.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(g.printer.Sprintf("%d", p.LotCount), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(g.quantity(p.TotalQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+g.money(p.TotalValue), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

// quantity formatea cantidades con separadores del locale y hasta 3 decimales.
func (g *MarotoReportGenerator) quantity(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return g.printer.Sprintf("%d", d.IntPart())
	}
	return g.printer.Sprintf("%.3f", d.Round(3).InexactFloat64())
}

// money formatea importes con separadores del locale y dos decimales.
func (g *MarotoReportGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
