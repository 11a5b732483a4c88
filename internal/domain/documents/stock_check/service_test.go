package stock_check

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/types"
	"stockyard/internal/domain"
	"stockyard/internal/domain/catalogs/product"
	"stockyard/internal/domain/catalogs/warehouse"
)

// --- in-memory fakes ---

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNoteRepo struct {
	notes      map[id.ID]*StockCheckNote
	lines      map[id.ID][]StockCheckLine
	lastCounts map[id.ID]*PreviousCount // keyed by product
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{
		notes:      make(map[id.ID]*StockCheckNote),
		lines:      make(map[id.ID][]StockCheckLine),
		lastCounts: make(map[id.ID]*PreviousCount),
	}
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *StockCheckNote) error {
	stored := *note
	r.notes[note.ID] = &stored
	return nil
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, noteID id.ID) (*StockCheckNote, error) {
	if n, ok := r.notes[noteID]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, assert.AnError
}

func (r *fakeNoteRepo) GetByNumber(ctx context.Context, number string) (*StockCheckNote, error) {
	for _, n := range r.notes {
		if n.Number == number {
			copied := *n
			return &copied, nil
		}
	}
	return nil, assert.AnError
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *StockCheckNote) error {
	stored := *note
	r.notes[note.ID] = &stored
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, noteID id.ID) error {
	delete(r.notes, noteID)
	return nil
}

func (r *fakeNoteRepo) GetLines(ctx context.Context, noteID id.ID) ([]StockCheckLine, error) {
	return append([]StockCheckLine(nil), r.lines[noteID]...), nil
}

func (r *fakeNoteRepo) SaveLines(ctx context.Context, noteID id.ID, lines []StockCheckLine) error {
	r.lines[noteID] = append([]StockCheckLine(nil), lines...)
	return nil
}

func (r *fakeNoteRepo) GetLastCount(ctx context.Context, warehouseID, productID id.ID) (*PreviousCount, error) {
	return r.lastCounts[productID], nil
}

func (r *fakeNoteRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockCheckNote], error) {
	var result domain.ListResult[*StockCheckNote]
	for _, n := range r.notes {
		copied := *n
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeNoteRepo) GetForUpdate(ctx context.Context, noteID id.ID) (*StockCheckNote, error) {
	return r.GetByID(ctx, noteID)
}

var _ Repository = (*fakeNoteRepo)(nil)

// fakeWarehouseRepo resolves warehouses by ID. The embedded interface
// covers the methods this suite never touches.
type fakeWarehouseRepo struct {
	warehouse.Repository
	byID map[id.ID]*warehouse.Warehouse
}

func (r *fakeWarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	if w, ok := r.byID[warehouseID]; ok {
		return w, nil
	}
	return nil, assert.AnError
}

type fakeProductRepo struct {
	product.Repository
	byID map[id.ID]*product.Product
}

func (r *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	if p, ok := r.byID[productID]; ok {
		return p, nil
	}
	return nil, assert.AnError
}

// fakeLedger returns fixed aggregate answers per product.
type fakeLedger struct {
	imported map[id.ID]types.Quantity
	exported map[id.ID]types.Quantity
	since    map[id.ID]time.Time
}

func (l *fakeLedger) TotalImportedSince(ctx context.Context, warehouseID, productID id.ID, since time.Time) (types.Quantity, error) {
	if l.since != nil {
		l.since[productID] = since
	}
	return l.imported[productID], nil
}

func (l *fakeLedger) TotalExportedSince(ctx context.Context, warehouseID, productID id.ID, since time.Time) (types.Quantity, error) {
	return l.exported[productID], nil
}

// --- fixtures ---

type checkFixture struct {
	svc         *Service
	repo        *fakeNoteRepo
	ledger      *fakeLedger
	warehouseID id.ID
	productID   id.ID
}

func newCheckFixture(t *testing.T) *checkFixture {
	t.Helper()

	warehouseID := id.New()
	productID := id.New()

	wh := warehouse.NewWarehouse("WH-001", "Main", warehouse.TypeMain)
	wh.ID = warehouseID

	prod := product.NewProduct("PRD-00001", "Blue Hoodie M", id.New(), "M", "blue")
	prod.ID = productID

	repo := newFakeNoteRepo()
	ledger := &fakeLedger{
		imported: map[id.ID]types.Quantity{},
		exported: map[id.ID]types.Quantity{},
		since:    map[id.ID]time.Time{},
	}

	svc := NewService(
		repo,
		&fakeWarehouseRepo{byID: map[id.ID]*warehouse.Warehouse{warehouseID: wh}},
		&fakeProductRepo{byID: map[id.ID]*product.Product{productID: prod}},
		ledger,
		&numerator.MockGenerator{},
		passthroughTxManager{},
	)

	return &checkFixture{
		svc:         svc,
		repo:        repo,
		ledger:      ledger,
		warehouseID: warehouseID,
		productID:   productID,
	}
}

func (f *checkFixture) createNote(t *testing.T) *StockCheckNote {
	t.Helper()
	note := NewStockCheckNote(f.warehouseID, "STAFF")
	require.NoError(t, f.svc.Create(context.Background(), note))
	return note
}

// --- tests ---

func TestCreate_SnapshotsLedger(t *testing.T) {
	f := newCheckFixture(t)
	f.ledger.imported[f.productID] = qty(50)
	f.ledger.exported[f.productID] = qty(20)

	note := NewStockCheckNote(f.warehouseID, "STAFF")
	note.AddLine(f.productID, 0, 0, 0, qty(28))

	require.NoError(t, f.svc.Create(context.Background(), note))

	line := note.Lines[0]
	assert.Equal(t, qty(50), line.TotalImportQuantity)
	assert.Equal(t, qty(20), line.TotalExportQuantity)
	assert.Equal(t, qty(30), line.ExpectedQuantity)
	assert.Equal(t, qty(-2), line.Difference())
	assert.NotEmpty(t, note.Number)
}

func TestCreate_BaselineFromPreviousCheck(t *testing.T) {
	f := newCheckFixture(t)

	prevDate := time.Now().Add(-30 * 24 * time.Hour)
	f.repo.lastCounts[f.productID] = &PreviousCount{Quantity: qty(40), Date: prevDate}
	f.ledger.imported[f.productID] = qty(10)
	f.ledger.exported[f.productID] = qty(5)

	note := NewStockCheckNote(f.warehouseID, "STAFF")
	note.AddLine(f.productID, 0, 0, 0, qty(44))
	require.NoError(t, f.svc.Create(context.Background(), note))

	line := note.Lines[0]
	assert.Equal(t, qty(40), line.LastQuantity)
	assert.Equal(t, qty(45), line.ExpectedQuantity)
	assert.Equal(t, prevDate, f.ledger.since[f.productID],
		"aggregation window starts at the previous finished check")
}

func TestCreate_RejectsDuplicateProduct(t *testing.T) {
	f := newCheckFixture(t)

	note := NewStockCheckNote(f.warehouseID, "STAFF")
	note.AddLine(f.productID, 0, 0, 0, qty(10))
	note.AddLine(f.productID, 0, 0, 0, qty(9))

	assert.Error(t, f.svc.Create(context.Background(), note))
}

func TestCreate_RejectsSystemWarehouse(t *testing.T) {
	f := newCheckFixture(t)

	sysID := id.New()
	sys := warehouse.NewWarehouse("WH-SYS", "System", warehouse.TypeMain)
	sys.ID = sysID
	sys.IsSystem = true
	f.svc.warehouses.(*fakeWarehouseRepo).byID[sysID] = sys

	note := NewStockCheckNote(sysID, "STAFF")
	assert.Error(t, f.svc.Create(context.Background(), note))
}

func TestAddProduct(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	f.ledger.imported[f.productID] = qty(10)

	line, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(9))
	require.NoError(t, err)
	assert.Equal(t, qty(10), line.ExpectedQuantity)
	assert.Equal(t, qty(9), line.ActualQuantity)

	t.Run("counting the same product again conflicts", func(t *testing.T) {
		_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(11))
		assert.Error(t, err, "recounts go through UpdateActualQuantity")

		lines, err := f.svc.repo.GetLines(ctx, note.ID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, qty(9), lines[0].ActualQuantity, "the stored count is untouched")
	})

	t.Run("negative count rejected", func(t *testing.T) {
		_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(-1))
		assert.Error(t, err)
	})

	t.Run("unknown product rejected", func(t *testing.T) {
		_, err := f.svc.AddProduct(ctx, note.ID, id.New(), qty(1))
		assert.Error(t, err)
	})
}

func TestAddProduct_RejectsProductGroup(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	groupID := id.New()
	group := product.NewProduct("PRD-GRP", "Hoodies", id.New(), "", "")
	group.ID = groupID
	group.IsFolder = true
	f.svc.products.(*fakeProductRepo).byID[groupID] = group

	_, err := f.svc.AddProduct(ctx, note.ID, groupID, qty(1))
	assert.Error(t, err)
}

func TestFinalize_Confirm(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(5))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, note.ID)
	require.NoError(t, err)

	finalized, err := f.svc.Finalize(ctx, note.ID, true)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFinished, finalized.Status)
	require.Len(t, finalized.Lines, 1)
	assert.Equal(t, LineStatusFinished, finalized.Lines[0].Status)
}

func TestFinalize_Discard(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(5))
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, note.ID)
	require.NoError(t, err)

	finalized, err := f.svc.Finalize(ctx, note.ID, false)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRejected, finalized.Status)
	assert.Empty(t, finalized.Lines, "temporary lines are discarded")

	lines, err := f.repo.GetLines(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFinalize_RequiresAccepted(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(5))
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, note.ID, true)
	assert.Error(t, err, "pending note cannot be finished")
}

func TestFinalize_DiscardRequiresAccepted(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(5))
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, note.ID, false)
	assert.Error(t, err, "pending note cannot be discarded either")

	stored, err := f.svc.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, stored.Status)
	assert.Len(t, stored.Lines, 1, "the count survives the failed finalize")
}

func TestFinalize_DiscardRequiresLines(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	_, err := f.svc.Approve(ctx, note.ID)
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, note.ID, false)
	assert.Error(t, err)

	stored, err := f.svc.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, stored.Status)
}

func TestFinalize_ConfirmRequiresLines(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	_, err := f.svc.Approve(ctx, note.ID)
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, note.ID, true)
	assert.Error(t, err)
}

func TestGetComparison(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()
	note := f.createNote(t)

	f.ledger.imported[f.productID] = qty(30)
	_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(28))
	require.NoError(t, err)

	rows, err := f.svc.GetComparison(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, qty(30), rows[0].Expected)
	assert.Equal(t, qty(28), rows[0].Actual)
	assert.Equal(t, qty(-2), rows[0].Difference)
}

func TestDelete(t *testing.T) {
	f := newCheckFixture(t)
	ctx := context.Background()

	t.Run("open note deletes", func(t *testing.T) {
		note := f.createNote(t)
		assert.NoError(t, f.svc.Delete(ctx, note.ID))
	})

	t.Run("finished note is immutable", func(t *testing.T) {
		note := f.createNote(t)
		_, err := f.svc.AddProduct(ctx, note.ID, f.productID, qty(5))
		require.NoError(t, err)
		_, err = f.svc.Approve(ctx, note.ID)
		require.NoError(t, err)
		_, err = f.svc.Finalize(ctx, note.ID, true)
		require.NoError(t, err)

		assert.Error(t, f.svc.Delete(ctx, note.ID))
	})
}
