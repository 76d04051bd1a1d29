package settlement

import (
	"context"

	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/procurement"
	"github.com/foundry-erp/foundry-erp/internal/salesorder"
)

// ProcurementAdapter narrows the procurement service to the settlement port.
type ProcurementAdapter struct {
	svc *procurement.Service
}

func NewProcurementAdapter(svc *procurement.Service) *ProcurementAdapter {
	return &ProcurementAdapter{svc: svc}
}

func (a *ProcurementAdapter) Details(ctx context.Context, id int64) (PurchaseOrderDoc, error) {
	po, err := a.svc.Get(ctx, id)
	if err != nil {
		return PurchaseOrderDoc{}, err
	}
	return PurchaseOrderDoc{ID: po.ID, Number: po.PONumber, VendorID: po.VendorID, TotalAmount: po.TotalAmount}, nil
}

func (a *ProcurementAdapter) MarkPaid(ctx context.Context, q db.DBTX, id int64) error {
	return a.svc.MarkPaid(ctx, q, id)
}

// SalesOrderAdapter narrows the sales order repository to the settlement port.
type SalesOrderAdapter struct {
	repo salesorder.RepositoryPort
}

func NewSalesOrderAdapter(repo salesorder.RepositoryPort) *SalesOrderAdapter {
	return &SalesOrderAdapter{repo: repo}
}

func (a *SalesOrderAdapter) Details(ctx context.Context, id int64) (SalesOrderDoc, error) {
	so, err := a.repo.Get(ctx, id)
	if err != nil {
		return SalesOrderDoc{}, err
	}
	return SalesOrderDoc{ID: so.ID, Number: so.Number, CustomerID: so.CustomerID}, nil
}

func (a *SalesOrderAdapter) NetTotal(ctx context.Context, q db.DBTX, id int64) (float64, error) {
	return a.repo.NetTotal(ctx, q, id)
}

func (a *SalesOrderAdapter) MarkPaid(ctx context.Context, q db.DBTX, id int64) error {
	return a.repo.UpdateStatus(ctx, q, id, salesorder.StatusPaid)
}
