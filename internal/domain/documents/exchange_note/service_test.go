package exchange_note

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/numerator"
	"stockyard/internal/core/security"
	"stockyard/internal/core/types"
	"stockyard/internal/domain"
	"stockyard/internal/domain/catalogs/product"
	"stockyard/internal/domain/catalogs/warehouse"
	"stockyard/internal/domain/posting"
	"stockyard/internal/domain/registers/stock"
)

// --- in-memory fakes ---

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNoteRepo struct {
	notes map[id.ID]*ExchangeNote
	items map[id.ID][]NoteItem
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{
		notes: make(map[id.ID]*ExchangeNote),
		items: make(map[id.ID][]NoteItem),
	}
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *ExchangeNote) error {
	stored := *note
	r.notes[note.ID] = &stored
	return nil
}

func (r *fakeNoteRepo) GetByID(ctx context.Context, noteID id.ID) (*ExchangeNote, error) {
	if n, ok := r.notes[noteID]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, assert.AnError
}

func (r *fakeNoteRepo) GetByNumber(ctx context.Context, number string) (*ExchangeNote, error) {
	for _, n := range r.notes {
		if n.Number == number {
			copied := *n
			return &copied, nil
		}
	}
	return nil, assert.AnError
}

func (r *fakeNoteRepo) Update(ctx context.Context, note *ExchangeNote) error {
	stored := *note
	r.notes[note.ID] = &stored
	return nil
}

func (r *fakeNoteRepo) Delete(ctx context.Context, noteID id.ID) error {
	delete(r.notes, noteID)
	return nil
}

func (r *fakeNoteRepo) GetItems(ctx context.Context, noteID id.ID) ([]NoteItem, error) {
	return append([]NoteItem(nil), r.items[noteID]...), nil
}

func (r *fakeNoteRepo) SaveItems(ctx context.Context, noteID id.ID, items []NoteItem) error {
	r.items[noteID] = append([]NoteItem(nil), items...)
	return nil
}

func (r *fakeNoteRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ExchangeNote], error) {
	var result domain.ListResult[*ExchangeNote]
	for _, n := range r.notes {
		copied := *n
		result.Items = append(result.Items, &copied)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (r *fakeNoteRepo) GetForUpdate(ctx context.Context, noteID id.ID) (*ExchangeNote, error) {
	return r.GetByID(ctx, noteID)
}

var _ Repository = (*fakeNoteRepo)(nil)

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

// fakeStockChecker tracks balances per warehouse+product.
type fakeStockChecker struct {
	balances map[id.ID]map[id.ID]types.Quantity
	calls    int
}

func (c *fakeStockChecker) CheckAndReserveStock(ctx context.Context, items []stock.StockReservation) error {
	c.calls++
	for _, item := range items {
		if c.balances[item.WarehouseID][item.ProductID] < item.RequiredQty {
			return assert.AnError
		}
	}
	return nil
}

// fakeStockRegister records posted movements.
type fakeStockRegister struct {
	recorded []entity.StockMovement
}

func (r *fakeStockRegister) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.recorded = append(r.recorded, movements...)
	return nil
}

// --- fixtures ---

type noteFixture struct {
	svc      *Service
	repo     *fakeNoteRepo
	register *fakeStockRegister
	checker  *fakeStockChecker

	sourceID id.ID
	destID   id.ID
	prodID   id.ID
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()

	sourceID := id.New()
	destID := id.New()
	prodID := id.New()

	src := warehouse.NewWarehouse("WH-001", "Main", warehouse.TypeMain)
	src.ID = sourceID
	dst := warehouse.NewWarehouse("WH-002", "Retail", warehouse.TypeRetail)
	dst.ID = destID

	prod := product.NewProduct("PRD-00001", "Blue Hoodie M", id.New(), "M", "blue")
	prod.ID = prodID

	repo := newFakeNoteRepo()
	register := &fakeStockRegister{}
	checker := &fakeStockChecker{balances: map[id.ID]map[id.ID]types.Quantity{
		sourceID: {prodID: qty(100)},
	}}

	txm := passthroughTxManager{}
	engine := posting.NewEngine(register, txm, security.NewFlexiblePolicy(30*24*time.Hour, time.Time{}))

	svc := NewService(
		repo,
		&fakeWarehouseRepo{byID: map[id.ID]*warehouse.Warehouse{sourceID: src, destID: dst}},
		&fakeProductRepo{byID: map[id.ID]*product.Product{prodID: prod}},
		checker,
		engine,
		&numerator.MockGenerator{},
		txm,
	)

	return &noteFixture{
		svc:      svc,
		repo:     repo,
		register: register,
		checker:  checker,
		sourceID: sourceID,
		destID:   destID,
		prodID:   prodID,
	}
}

func (f *noteFixture) createNote(t *testing.T, noteType NoteType, quantity types.Quantity) *ExchangeNote {
	t.Helper()

	var note *ExchangeNote
	switch noteType {
	case TypeImport:
		note = NewExchangeNote(TypeImport, nil, &f.destID)
	case TypeExport:
		note = NewExchangeNote(TypeExport, &f.sourceID, nil)
	case TypeTransfer:
		note = NewExchangeNote(TypeTransfer, &f.sourceID, &f.destID)
	}
	note.AddItem("", f.prodID, quantity)

	require.NoError(t, f.svc.Create(context.Background(), note))
	return note
}

// --- tests ---

func TestCreate_GeneratesNumberAndItemCodes(t *testing.T) {
	f := newNoteFixture(t)

	note := f.createNote(t, TypeImport, qty(10))

	assert.NotEmpty(t, note.Number)
	assert.NotEmpty(t, note.Items[0].Code)
	assert.Equal(t, entity.StatusPending, note.Status)
}

func TestCreate_RejectsUnknownProduct(t *testing.T) {
	f := newNoteFixture(t)

	note := NewExchangeNote(TypeImport, nil, &f.destID)
	note.AddItem("", id.New(), qty(1))

	assert.Error(t, f.svc.Create(context.Background(), note))
}

func TestCreate_RejectsInactiveDestination(t *testing.T) {
	f := newNoteFixture(t)

	closedID := id.New()
	closed := warehouse.NewWarehouse("WH-003", "Closed", warehouse.TypeMain)
	closed.ID = closedID
	closed.IsActive = false
	f.svc.warehouses.(*fakeWarehouseRepo).byID[closedID] = closed

	note := NewExchangeNote(TypeImport, nil, &closedID)
	note.AddItem("", f.prodID, qty(1))

	assert.Error(t, f.svc.Create(context.Background(), note))
}

func TestFinalize_ImportPostsReceipt(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	note := f.createNote(t, TypeImport, qty(50))

	_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
	require.NoError(t, err)

	finalized, err := f.svc.Finalize(ctx, note.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFinished, finalized.Status)
	assert.True(t, finalized.Posted)
	require.Len(t, f.register.recorded, 1)
	assert.Equal(t, entity.RecordTypeReceipt, f.register.recorded[0].RecordType)
	assert.Equal(t, f.destID, f.register.recorded[0].WarehouseID)
	assert.Equal(t, 0, f.checker.calls, "imports need no availability check")
}

func TestFinalize_ExportChecksAvailability(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	t.Run("sufficient stock posts expense", func(t *testing.T) {
		note := f.createNote(t, TypeExport, qty(60))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)

		finalized, err := f.svc.Finalize(ctx, note.ID)
		require.NoError(t, err)

		assert.True(t, finalized.Posted)
		assert.Equal(t, 1, f.checker.calls)
		require.Len(t, f.register.recorded, 1)
		assert.Equal(t, entity.RecordTypeExpense, f.register.recorded[0].RecordType)
	})

	t.Run("insufficient stock fails and posts nothing", func(t *testing.T) {
		recordedBefore := len(f.register.recorded)

		note := f.createNote(t, TypeExport, qty(500))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)

		_, err = f.svc.Finalize(ctx, note.ID)
		assert.Error(t, err)
		assert.Len(t, f.register.recorded, recordedBefore)

		stored, err := f.repo.GetByID(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusAccepted, stored.Status, "note stays accepted on failure")
	})
}

func TestFinalize_TransferPostsBothHalves(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	note := f.createNote(t, TypeTransfer, qty(30))

	_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, note.ID)
	require.NoError(t, err)

	require.Len(t, f.register.recorded, 2)
	assert.Equal(t, f.sourceID, f.register.recorded[0].WarehouseID)
	assert.Equal(t, f.destID, f.register.recorded[1].WarehouseID)
	assert.Equal(t, entity.MovementKindTransfer, f.register.recorded[0].Kind)
	assert.Equal(t, 1, f.checker.calls, "transfer source balance is checked")
}

func TestFinalize_Guards(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	t.Run("pending note", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))
		_, err := f.svc.Finalize(ctx, note.ID)
		assert.Error(t, err)
	})

	t.Run("no active items", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &f.destID)
		require.NoError(t, f.svc.Create(ctx, note))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)

		_, err = f.svc.Finalize(ctx, note.ID)
		assert.Error(t, err)
	})

	t.Run("double finalize", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)
		_, err = f.svc.Finalize(ctx, note.ID)
		require.NoError(t, err)

		_, err = f.svc.Finalize(ctx, note.ID)
		assert.Error(t, err)
	})
}

func TestCancel(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	t.Run("pending note", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))

		canceled, err := f.svc.Cancel(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusRejected, canceled.Status)
		assert.Equal(t, ItemStatusCanceled, canceled.Items[0].Status)
		assert.Empty(t, f.register.recorded, "nothing reaches the register")
	})

	t.Run("accepted note", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, note.ID)
		assert.NoError(t, err)
	})

	t.Run("finalized note", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)
		_, err = f.svc.Finalize(ctx, note.ID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, note.ID)
		assert.Error(t, err)
	})
}

func TestAddItem_Lifecycle(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()
	note := f.createNote(t, TypeImport, qty(5))

	item, err := f.svc.AddItem(ctx, note.ID, f.prodID, qty(3))
	require.NoError(t, err)
	assert.Equal(t, 2, item.LineNo)
	assert.NotEmpty(t, item.Code)

	_, err = f.svc.AddItem(ctx, note.ID, f.prodID, qty(0))
	assert.Error(t, err, "zero quantity rejected")

	_, err = f.svc.Approve(ctx, note.ID, "MANAGER")
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, note.ID, f.prodID, qty(1))
	assert.Error(t, err, "accepted notes are not editable")
}

func TestDelete(t *testing.T) {
	f := newNoteFixture(t)
	ctx := context.Background()

	t.Run("pending note deletes", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))
		assert.NoError(t, f.svc.Delete(ctx, note.ID))
	})

	t.Run("finalized note is immutable", func(t *testing.T) {
		note := f.createNote(t, TypeImport, qty(5))
		_, err := f.svc.Approve(ctx, note.ID, "MANAGER")
		require.NoError(t, err)
		_, err = f.svc.Finalize(ctx, note.ID)
		require.NoError(t, err)

		assert.Error(t, f.svc.Delete(ctx, note.ID))
	})
}
