package ledger

import (
	"context"
	"sort"

	"github.com/jhoicas/lot-ledger/internal/application/dto"
)

// SafetyStockReport lotes activos por debajo de su nivel de seguridad, ordenados por déficit
// descendente (a igual déficit, por lot id) y numerados por prioridad.
func (e *BalanceEngine) SafetyStockReport(ctx context.Context) ([]dto.SafetyStockAlertDTO, error) {
	rows, err := e.lotStock(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]dto.SafetyStockAlertDTO, 0)
	for _, r := range rows {
		if !r.SafetyStockLevel.IsPositive() || !r.Balance.LessThan(r.SafetyStockLevel) {
			continue
		}
		alerts = append(alerts, dto.SafetyStockAlertDTO{
			LotID:             r.LotID,
			LotNumber:         r.LotNumber,
			Location:          r.Location,
			ProductID:         r.ProductID,
			ProductName:       r.ProductName,
			AvailableQuantity: r.Balance,
			SafetyStockLevel:  r.SafetyStockLevel,
			Deficit:           r.SafetyStockLevel.Sub(r.Balance),
		})
	}

	sort.Slice(alerts, func(i, j int) bool {
		if c := alerts[i].Deficit.Cmp(alerts[j].Deficit); c != 0 {
			return c > 0
		}
		return alerts[i].LotID < alerts[j].LotID
	})
	for i := range alerts {
		alerts[i].Priority = i + 1
	}
	return alerts, nil
}
