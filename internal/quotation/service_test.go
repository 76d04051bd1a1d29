package quotation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/catalog"
	"github.com/foundry-erp/foundry-erp/internal/platform/db"
	"github.com/foundry-erp/foundry-erp/internal/sequence"
	"github.com/foundry-erp/foundry-erp/internal/shared"
)

type memoryRepo struct {
	nextID     int64
	quotations map[int64]Quotation
	items      map[int64][]QuotationItem
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, quotations: map[int64]Quotation{}, items: map[int64][]QuotationItem{}}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := map[int64]Quotation{}
	for k, v := range m.quotations {
		snapshot[k] = v
	}
	if err := fn(ctx, &memoryTx{repo: m}); err != nil {
		m.quotations = snapshot
		return err
	}
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Quotation, []QuotationItem, error) {
	q, ok := m.quotations[id]
	if !ok {
		return Quotation{}, nil, fmt.Errorf("quotation %d: %w", id, shared.ErrNotFound)
	}
	return q, m.items[id], nil
}

func (m *memoryRepo) List(_ context.Context, _ ListFilters, _, _ int) ([]Quotation, int, error) {
	var out []Quotation
	for _, q := range m.quotations {
		out = append(out, q)
	}
	return out, len(out), nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) Querier() db.DBTX { return nil }

func (t *memoryTx) Create(_ context.Context, q Quotation) (int64, error) {
	q.ID = t.repo.nextID
	t.repo.nextID++
	t.repo.quotations[q.ID] = q
	return q.ID, nil
}

func (t *memoryTx) InsertItem(_ context.Context, item QuotationItem) error {
	t.repo.items[item.QuotationID] = append(t.repo.items[item.QuotationID], item)
	return nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status) error {
	q, ok := t.repo.quotations[id]
	if !ok {
		return shared.ErrNotFound
	}
	q.Status = status
	t.repo.quotations[id] = q
	return nil
}

func (t *memoryTx) UpdateTotals(_ context.Context, id int64, total, tax, grand float64) error {
	q := t.repo.quotations[id]
	q.TotalAmount, q.TaxAmount, q.GrandTotal = total, tax, grand
	t.repo.quotations[id] = q
	return nil
}

func (t *memoryTx) DeleteItems(_ context.Context, quotationID int64) error {
	delete(t.repo.items, quotationID)
	return nil
}

func (t *memoryTx) Delete(_ context.Context, id int64) error {
	delete(t.repo.quotations, id)
	return nil
}

type fakePOPort struct {
	byQuotation map[int64]string
	created     int
	failCreate  error
}

func (f *fakePOPort) ExistsForQuotation(_ context.Context, _ db.DBTX, quotationID int64) (string, bool, error) {
	number, ok := f.byQuotation[quotationID]
	return number, ok, nil
}

func (f *fakePOPort) CreateFromQuotation(_ context.Context, _ db.DBTX, quotationID int64) (int64, string, error) {
	if f.failCreate != nil {
		return 0, "", f.failCreate
	}
	f.created++
	number := fmt.Sprintf("PO-2026-%04d", f.created)
	if f.byQuotation == nil {
		f.byQuotation = map[int64]string{}
	}
	f.byQuotation[quotationID] = number
	return int64(f.created), number, nil
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) DocumentSent(_ context.Context, docType, number string) {
	f.sent = append(f.sent, docType+":"+number)
}

func newTestService(repo RepositoryPort, pos PurchaseOrderPort, notifier NotifierPort) *Service {
	resolver := catalog.NewResolver(&staticCatalog{})
	seq := sequence.NewGenerator()
	return NewService(repo, pos, resolver, seq, notifier, nil)
}

type staticCatalog struct{}

func (staticCatalog) GetByCode(_ context.Context, code string) (catalog.Item, error) {
	return catalog.Item{}, shared.ErrNotFound
}

func (staticCatalog) ListByName(_ context.Context, _ string) ([]catalog.Item, error) {
	return nil, nil
}

func seedQuotation(repo *memoryRepo, status Status) int64 {
	id := repo.nextID
	repo.nextID++
	repo.quotations[id] = Quotation{
		ID:          id,
		QuoteNumber: fmt.Sprintf("QT-%d", 1700000000000+id),
		VendorID:    7,
		Status:      status,
		ValidUntil:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	return id
}

func TestCreateComputesPerLineAndDocumentTotals(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakePOPort{}, nil)

	q, err := svc.Create(context.Background(), CreateInput{
		VendorID:   7,
		ValidUntil: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items: []LineInput{{
			MaterialName: "MS Rod 8mm",
			MaterialType: "Raw Material",
			Quantity:     10,
			Unit:         "kg",
			UnitRate:     100,
		}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, q.Status)
	require.Equal(t, 1000.00, q.TotalAmount)
	require.Equal(t, 180.00, q.TaxAmount)
	require.Equal(t, 1180.00, q.GrandTotal)

	items := repo.items[q.ID]
	require.Len(t, items, 1)
	require.Equal(t, 90.00, items[0].CGSTAmount)
	require.Equal(t, 90.00, items[0].SGSTAmount)
	require.Equal(t, 1180.00, items[0].TotalAmount)
	require.Equal(t, "MS-ROD-8MM-RAW-MATERIAL", items[0].ItemCode)
}

func TestCreateRequiresVendorAndItems(t *testing.T) {
	svc := newTestService(newMemoryRepo(), &fakePOPort{}, nil)

	_, err := svc.Create(context.Background(), CreateInput{Items: []LineInput{{Quantity: 1}}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{VendorID: 7})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusDraft)
	svc := newTestService(repo, &fakePOPort{}, nil)

	_, err := svc.SetStatus(context.Background(), id, Status("SHIPPED"))
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Equal(t, StatusDraft, repo.quotations[id].Status)
}

func TestReviewedDerivesPurchaseOrderOnce(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusReceived)
	pos := &fakePOPort{}
	svc := newTestService(repo, pos, nil)

	status, err := svc.SetStatus(context.Background(), id, StatusReviewed)
	require.NoError(t, err)
	require.Equal(t, StatusReviewed, status)
	require.Equal(t, 1, pos.created)

	// A retried REVIEWED request finds the existing order and derives nothing.
	_, err = svc.SetStatus(context.Background(), id, StatusReviewed)
	require.NoError(t, err)
	require.Equal(t, 1, pos.created)
}

func TestReviewedRollsBackWhenDerivationFails(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusReceived)
	pos := &fakePOPort{failCreate: fmt.Errorf("vendor missing")}
	svc := newTestService(repo, pos, nil)

	_, err := svc.SetStatus(context.Background(), id, StatusReviewed)
	require.Error(t, err)
	require.Equal(t, StatusReceived, repo.quotations[id].Status)
}

func TestSentNotifiesAfterCommit(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusDraft)
	notifier := &fakeNotifier{}
	svc := newTestService(repo, &fakePOPort{}, notifier)

	_, err := svc.SetStatus(context.Background(), id, StatusSent)
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	require.Contains(t, notifier.sent[0], "QUOTATION:")
}

func TestDeleteBlockedByDerivedPurchaseOrder(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusReviewed)
	pos := &fakePOPort{byQuotation: map[int64]string{id: "PO-2026-0042"}}
	svc := newTestService(repo, pos, nil)

	err := svc.Delete(context.Background(), id)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Contains(t, err.Error(), "PO-2026-0042")
	_, _, getErr := repo.Get(context.Background(), id)
	require.NoError(t, getErr)
}

func TestDeleteRemovesUnreferencedQuotation(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusDraft)
	svc := newTestService(repo, &fakePOPort{}, nil)

	require.NoError(t, svc.Delete(context.Background(), id))
	_, _, err := repo.Get(context.Background(), id)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMarkExpiredOnlyFlipsSentPastValidity(t *testing.T) {
	repo := newMemoryRepo()
	id := seedQuotation(repo, StatusSent)
	svc := newTestService(repo, &fakePOPort{}, nil)

	// Still valid: untouched.
	require.NoError(t, svc.MarkExpired(context.Background(), id, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, StatusSent, repo.quotations[id].Status)

	require.NoError(t, svc.MarkExpired(context.Background(), id, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, StatusPending, repo.quotations[id].Status)
}

func TestReplaceItemsRecomputesDocumentTotals(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakePOPort{}, nil)
	id := seedQuotation(repo, StatusDraft)
	repo.items[id] = []QuotationItem{{QuotationID: id, ItemCode: "OLD", TotalAmount: 999}}

	q, items, err := svc.ReplaceItems(context.Background(), id, []LineInput{{
		MaterialName: "MS Rod 8mm",
		MaterialType: "Raw Material",
		Quantity:     2,
		Unit:         "kg",
		UnitRate:     100,
	}})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "MS-ROD-8MM-RAW-MATERIAL", items[0].ItemCode)
	require.Equal(t, 236.00, items[0].TotalAmount)

	require.Equal(t, 200.00, q.TotalAmount)
	require.Equal(t, 36.00, q.TaxAmount)
	require.Equal(t, 236.00, q.GrandTotal)

	stored := repo.quotations[id]
	require.Equal(t, 200.00, stored.TotalAmount)
	require.Equal(t, 236.00, stored.GrandTotal)
	require.Len(t, repo.items[id], 1)
}

func TestReplaceItemsRejectedOnceReviewed(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &fakePOPort{}, nil)
	id := seedQuotation(repo, StatusReviewed)
	repo.items[id] = []QuotationItem{{QuotationID: id, ItemCode: "KEEP", TotalAmount: 1180}}

	_, _, err := svc.ReplaceItems(context.Background(), id, []LineInput{{
		MaterialName: "MS Rod 8mm",
		MaterialType: "Raw Material",
		Quantity:     1,
		UnitRate:     100,
	}})
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Equal(t, "KEEP", repo.items[id][0].ItemCode)
}
