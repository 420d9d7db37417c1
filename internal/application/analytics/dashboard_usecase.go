// Package analytics contiene los casos de uso de reportes de existencias:
// resumen global, desglose por producto y reporte PDF.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
	"github.com/jhoicas/lot-ledger/internal/application/ledger"
)

// ReportGenerator renderiza el reporte de existencias.
type ReportGenerator interface {
	StockReport(overview *dto.OverviewResponse) ([]byte, error)
}

// DashboardUseCase expone los agregados del motor de saldos a los consumidores de reportes.
//
// Fuente de datos: ledger.BalanceEngine (saldos derivados del journal, solo lotes no eliminados).
type DashboardUseCase struct {
	engine *ledger.BalanceEngine
	report ReportGenerator
	now    func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(engine *ledger.BalanceEngine, report ReportGenerator) *DashboardUseCase {
	return &DashboardUseCase{
		engine: engine,
		report: report,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetSummary totales globales: productos, lotes, entradas, salidas, stock y valor.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.StockSummaryResponse, error) {
	summary, err := uc.engine.AggregateSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: summary: %w", err)
	}
	return summary, nil
}

// GetProductSummary existencias por producto, mayor cantidad primero.
func (uc *DashboardUseCase) GetProductSummary(ctx context.Context) ([]dto.ProductStockSummary, error) {
	products, err := uc.engine.AggregateByProduct(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: product summary: %w", err)
	}
	return products, nil
}

// GetOverview resumen y desglose por producto, consultados en paralelo.
func (uc *DashboardUseCase) GetOverview(ctx context.Context) (*dto.OverviewResponse, error) {
	var (
		summary  *dto.StockSummaryResponse
		products []dto.ProductStockSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = uc.GetSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = uc.GetProductSummary(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dto.OverviewResponse{Summary: *summary, Products: products, GeneratedAt: uc.now()}, nil
}

// StockReportPDF genera el reporte de existencias en PDF.
func (uc *DashboardUseCase) StockReportPDF(ctx context.Context) ([]byte, error) {
	overview, err := uc.GetOverview(ctx)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.report.StockReport(overview)
	if err != nil {
		return nil, fmt.Errorf("dashboard: render report: %w", err)
	}
	return pdf, nil
}
