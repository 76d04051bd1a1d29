package procurement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/catalog"
	"github.com/foundry-erp/foundry-erp/internal/materialrequest"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

type memoryRepo struct {
	nextID     int64
	nextSeq    int
	orders     map[int64]PurchaseOrder
	items      map[int64][]PurchaseOrderItem
	totalWrite map[int64]float64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, orders: map[int64]PurchaseOrder{}, items: map[int64][]PurchaseOrderItem{}, totalWrite: map[int64]float64{}}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := map[int64]PurchaseOrder{}
	for k, v := range m.orders {
		snapshot[k] = v
	}
	if err := fn(ctx, &memoryTx{repo: m}); err != nil {
		m.orders = snapshot
		return err
	}
	return nil
}

func (m *memoryRepo) Bind(_ db.DBTX) TxRepository { return &memoryTx{repo: m} }

func (m *memoryRepo) Get(_ context.Context, id int64) (PurchaseOrder, error) {
	po, ok := m.orders[id]
	if !ok {
		return PurchaseOrder{}, fmt.Errorf("purchase order %d: %w", id, shared.ErrNotFound)
	}
	po.Items = m.items[id]
	return po, nil
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters, _ shared.Pagination) ([]PurchaseOrder, int64, error) {
	var out []PurchaseOrder
	for _, po := range m.orders {
		out = append(out, po)
	}
	return out, int64(len(out)), nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) Querier() db.DBTX { return nil }

func (t *memoryTx) GeneratePONumber(_ context.Context) (string, error) {
	t.repo.nextSeq++
	return fmt.Sprintf("PO-2026-%04d", t.repo.nextSeq), nil
}

func (t *memoryTx) Create(_ context.Context, po PurchaseOrder) (int64, error) {
	po.ID = t.repo.nextID
	t.repo.nextID++
	t.repo.orders[po.ID] = po
	return po.ID, nil
}

func (t *memoryTx) InsertItem(_ context.Context, it PurchaseOrderItem) error {
	t.repo.items[it.PurchaseOrderID] = append(t.repo.items[it.PurchaseOrderID], it)
	return nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status) error {
	po, ok := t.repo.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	po.Status = status
	t.repo.orders[id] = po
	return nil
}

func (t *memoryTx) UpdateTotals(_ context.Context, id int64, total float64) error {
	po := t.repo.orders[id]
	po.TotalAmount = total
	t.repo.orders[id] = po
	t.repo.totalWrite[id] = total
	return nil
}

func (t *memoryTx) SetApproval(_ context.Context, id, approvedBy int64, at time.Time) error {
	po := t.repo.orders[id]
	po.ApprovedBy = &approvedBy
	po.ApprovedAt = &at
	t.repo.orders[id] = po
	return nil
}

func (t *memoryTx) SetStoreAcceptance(_ context.Context, id int64, status AcceptanceStatus) error {
	po, ok := t.repo.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	po.StoreAcceptance = status
	t.repo.orders[id] = po
	return nil
}

func (t *memoryTx) AcceptAllLines(_ context.Context, poID int64) error {
	items := t.repo.items[poID]
	for i := range items {
		items[i].AcceptedQuantity = items[i].Quantity
	}
	t.repo.items[poID] = items
	return nil
}

func (t *memoryTx) SetLineAccepted(_ context.Context, poID, itemID int64, qty float64) error {
	items := t.repo.items[poID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].AcceptedQuantity = qty
			t.repo.items[poID] = items
			return nil
		}
	}
	return shared.ErrNotFound
}

func (t *memoryTx) ExistsForQuotation(_ context.Context, quotationID int64) (string, bool, error) {
	for _, po := range t.repo.orders {
		if po.QuotationID != nil && *po.QuotationID == quotationID {
			return po.PONumber, true, nil
		}
	}
	return "", false, nil
}

type fakeQuotations struct {
	byID map[int64]QuotationDetails
}

func (f *fakeQuotations) Details(_ context.Context, id int64) (QuotationDetails, error) {
	d, ok := f.byID[id]
	if !ok {
		return QuotationDetails{}, fmt.Errorf("quotation %d: %w", id, shared.ErrNotFound)
	}
	return d, nil
}

type fakeMaterials struct {
	byID     map[int64]materialrequest.MaterialRequest
	statuses map[int64]string
}

func (f *fakeMaterials) Get(_ context.Context, id int64) (materialrequest.MaterialRequest, error) {
	mr, ok := f.byID[id]
	if !ok {
		return materialrequest.MaterialRequest{}, fmt.Errorf("material request %d: %w", id, shared.ErrNotFound)
	}
	return mr, nil
}

func (f *fakeMaterials) UpdateStatus(_ context.Context, _ db.DBTX, id int64, status string) error {
	if f.statuses == nil {
		f.statuses = map[int64]string{}
	}
	f.statuses[id] = status
	return nil
}

type staticRate struct {
	name string
	rate float64
}

func (s staticRate) Name() string { return s.name }

func (s staticRate) Rate(_ context.Context, _ materialrequest.MaterialRequest) (float64, error) {
	return s.rate, nil
}

type emptyCatalog struct{}

func (emptyCatalog) GetByCode(_ context.Context, _ string) (catalog.Item, error) {
	return catalog.Item{}, shared.ErrNotFound
}

func (emptyCatalog) ListByName(_ context.Context, _ string) ([]catalog.Item, error) {
	return nil, nil
}

func newTestService(repo RepositoryPort, quotations QuotationReader, materials MaterialRequestPort, rates []RateSource) *Service {
	return NewService(repo, quotations, materials, rates, catalog.NewResolver(emptyCatalog{}), nil, nil)
}

func ptr[T any](v T) *T { return &v }

func TestCreateRequiresExactlyOneSource(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeQuotations{}, &fakeMaterials{}, nil)

	_, err := svc.CreatePurchaseOrder(context.Background(), Source{}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreatePurchaseOrder(context.Background(), Source{QuotationID: 1, MaterialRequestID: 2}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreatePurchaseOrder(context.Background(), Source{QuotationID: 1, VendorID: 3}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestManualSourceRequiresVendorAndItems(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakeQuotations{}, &fakeMaterials{}, nil)

	_, err := svc.CreatePurchaseOrder(context.Background(), Source{Items: []ManualLine{{MaterialName: "Bolt", Quantity: 1}}}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeriveFromQuotationSkipsRejectedLines(t *testing.T) {
	repo := newMemoryRepo()
	quotations := &fakeQuotations{byID: map[int64]QuotationDetails{
		11: {
			ID:           11,
			VendorID:     7,
			SalesOrderID: ptr(int64(3)),
			ValidUntil:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			GrandTotal:   1180.00,
			Items: []QuotationLine{
				{ItemCode: "MS-ROD-8", MaterialType: "Raw Material", Quantity: 10, Unit: "kg", UnitRate: 100, CGSTPercent: 9, SGSTPercent: 9, SalesOrderState: "Accepted"},
				{ItemCode: "CI-PLATE", MaterialType: "Raw Material", Quantity: 5, Unit: "kg", UnitRate: 50, CGSTPercent: 9, SGSTPercent: 9, SalesOrderState: "Rejected"},
			},
		},
	}}
	svc := newTestService(repo, quotations, &fakeMaterials{}, nil)

	po, err := svc.CreatePurchaseOrder(context.Background(), Source{QuotationID: 11}, nil)
	require.NoError(t, err)
	require.Equal(t, "PO-2026-0001", po.PONumber)
	require.Equal(t, StatusDraft, po.Status)
	require.Equal(t, int64(7), *po.VendorID)
	require.Equal(t, int64(3), *po.SalesOrderID)
	require.Len(t, repo.items[po.ID], 1)
	require.Equal(t, "MS-ROD-8", repo.items[po.ID][0].ItemCode)
	require.Equal(t, 1180.00, po.TotalAmount)
	// Validity date stands in for a missing delivery date.
	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *po.ExpectedDeliveryDate)
}

func TestDeriveFromQuotationWritesBackCorrectedTotal(t *testing.T) {
	repo := newMemoryRepo()
	quotations := &fakeQuotations{byID: map[int64]QuotationDetails{
		11: {
			ID:         11,
			VendorID:   7,
			GrandTotal: 9999.00,
			Items: []QuotationLine{
				{ItemCode: "MS-ROD-8", Quantity: 10, UnitRate: 100, CGSTPercent: 9, SGSTPercent: 9},
			},
		},
	}}
	svc := newTestService(repo, quotations, &fakeMaterials{}, nil)

	po, err := svc.CreatePurchaseOrder(context.Background(), Source{QuotationID: 11}, nil)
	require.NoError(t, err)
	require.Equal(t, 1180.00, po.TotalAmount)
	require.Equal(t, 1180.00, repo.totalWrite[po.ID])
}

func TestDeriveFromQuotationRejectsWhenAllLinesRejected(t *testing.T) {
	quotations := &fakeQuotations{byID: map[int64]QuotationDetails{
		11: {
			ID:       11,
			VendorID: 7,
			Items: []QuotationLine{
				{ItemCode: "MS-ROD-8", Quantity: 10, UnitRate: 100, SalesOrderState: "Rejected"},
			},
		},
	}}
	svc := newTestService(newMemoryRepo(), quotations, &fakeMaterials{}, nil)

	_, err := svc.CreatePurchaseOrder(context.Background(), Source{QuotationID: 11}, nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeriveFromMaterialRequestUsesFirstPositiveRate(t *testing.T) {
	repo := newMemoryRepo()
	materials := &fakeMaterials{byID: map[int64]materialrequest.MaterialRequest{
		21: {
			ID:           21,
			ItemCode:     "MS-ROD-8",
			MaterialName: "MS Rod 8mm",
			MaterialType: "Raw Material",
			Quantity:     10,
			Unit:         "kg",
			UnitRate:     85,
			VendorID:     ptr(int64(7)),
		},
	}}
	rates := []RateSource{
		staticRate{name: "bom_cost", rate: 0},
		staticRate{name: "plan_rate", rate: 0},
		staticRate{name: "historical_po", rate: 92.5},
		staticRate{name: "request_rate", rate: 85},
	}
	svc := newTestService(repo, &fakeQuotations{}, materials, rates)

	po, err := svc.CreatePurchaseOrder(context.Background(), Source{MaterialRequestID: 21}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, po.Status)
	require.Len(t, repo.items[po.ID], 1)
	require.Equal(t, 92.5, repo.items[po.ID][0].UnitRate)
}

func TestDeriveFromMaterialRequestWithoutVendorIsPORequest(t *testing.T) {
	repo := newMemoryRepo()
	materials := &fakeMaterials{byID: map[int64]materialrequest.MaterialRequest{
		21: {ID: 21, ItemCode: "MS-ROD-8", MaterialName: "MS Rod 8mm", Quantity: 10, UnitRate: 85},
	}}
	svc := newTestService(repo, &fakeQuotations{}, materials, []RateSource{requestRateSource{}})

	po, err := svc.CreatePurchaseOrder(context.Background(), Source{MaterialRequestID: 21}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusPORequest, po.Status)
	require.Nil(t, po.VendorID)
}

func TestDeriveManualPricesEveryLine(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakeQuotations{}, &fakeMaterials{}, nil)

	po, err := svc.CreatePurchaseOrder(context.Background(), Source{
		VendorID: 7,
		Items: []ManualLine{
			{MaterialName: "MS Rod 8mm", MaterialType: "Raw Material", Quantity: 10, Unit: "kg", UnitRate: 100},
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, po.Status)
	require.Equal(t, 1180.00, po.TotalAmount)
	items := repo.items[po.ID]
	require.Len(t, items, 1)
	require.Equal(t, "MS-ROD-8MM-RAW-MATERIAL", items[0].ItemCode)
	require.Equal(t, 1000.00, items[0].Amount)
	require.Equal(t, 90.00, items[0].CGSTAmount)
	require.Equal(t, 90.00, items[0].SGSTAmount)
}

func TestCreateFromQuotationRunsOnCallerScope(t *testing.T) {
	repo := newMemoryRepo()
	quotations := &fakeQuotations{byID: map[int64]QuotationDetails{
		11: {ID: 11, VendorID: 7, Items: []QuotationLine{{ItemCode: "MS-ROD-8", Quantity: 1, UnitRate: 10}}},
	}}
	svc := newTestService(repo, quotations, &fakeMaterials{}, nil)

	id, number, err := svc.CreateFromQuotation(context.Background(), nil, 11)
	require.NoError(t, err)
	require.NotZero(t, id)
	require.Equal(t, "PO-2026-0001", number)

	got, exists, err := svc.ExistsForQuotation(context.Background(), nil, 11)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, number, got)
}
