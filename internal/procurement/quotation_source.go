package procurement

import (
	"context"

	"github.com/foundry-erp/foundry-erp/internal/quotation"
	"github.com/foundry-erp/foundry-erp/internal/salesorder"
)

// QuotationAdapter reads quotations and joins in the sales order line
// statuses that decide which lines are orderable.
type QuotationAdapter struct {
	quotations quotation.RepositoryPort
	sales      salesorder.RepositoryPort
}

func NewQuotationAdapter(quotations quotation.RepositoryPort, sales salesorder.RepositoryPort) *QuotationAdapter {
	return &QuotationAdapter{quotations: quotations, sales: sales}
}

func (a *QuotationAdapter) Details(ctx context.Context, id int64) (QuotationDetails, error) {
	q, items, err := a.quotations.Get(ctx, id)
	if err != nil {
		return QuotationDetails{}, err
	}

	statuses := map[string]string{}
	if q.SalesOrderID != nil {
		statuses, err = a.sales.ItemStatuses(ctx, *q.SalesOrderID)
		if err != nil {
			return QuotationDetails{}, err
		}
	}

	d := QuotationDetails{
		ID:                q.ID,
		VendorID:          q.VendorID,
		SalesOrderID:      q.SalesOrderID,
		MaterialRequestID: q.MaterialRequestID,
		ValidUntil:        q.ValidUntil,
		GrandTotal:        q.GrandTotal,
	}
	for _, it := range items {
		d.Items = append(d.Items, QuotationLine{
			ItemCode:        it.ItemCode,
			Description:     it.Description,
			MaterialType:    it.MaterialType,
			Quantity:        it.Quantity,
			DesignQuantity:  it.DesignQuantity,
			Unit:            it.Unit,
			UnitRate:        it.UnitRate,
			CGSTPercent:     it.CGSTPercent,
			SGSTPercent:     it.SGSTPercent,
			SalesOrderState: statuses[it.ItemCode],
		})
	}
	return d, nil
}
