package exchange_note

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"stockyard/internal/core/types"
)

func qty(v float64) types.Quantity {
	return types.NewQuantityFromFloat64(v)
}

func TestParseNoteType(t *testing.T) {
	for _, valid := range []string{"IMPORT", "EXPORT", "TRANSFER"} {
		nt, err := ParseNoteType(valid)
		require.NoError(t, err)
		assert.Equal(t, NoteType(valid), nt)
	}

	_, err := ParseNoteType("import")
	assert.Error(t, err)
	_, err = ParseNoteType("")
	assert.Error(t, err)
}

func TestValidate_WarehouseRequirements(t *testing.T) {
	ctx := context.Background()
	src := id.New()
	dst := id.New()

	tests := []struct {
		name    string
		note    *ExchangeNote
		wantErr bool
	}{
		{"import with destination", NewExchangeNote(TypeImport, nil, &dst), false},
		{"import without destination", NewExchangeNote(TypeImport, nil, nil), true},
		{"export with source", NewExchangeNote(TypeExport, &src, nil), false},
		{"export without source", NewExchangeNote(TypeExport, nil, nil), true},
		{"transfer with both", NewExchangeNote(TypeTransfer, &src, &dst), false},
		{"transfer missing destination", NewExchangeNote(TypeTransfer, &src, nil), true},
		{"transfer same warehouse", NewExchangeNote(TypeTransfer, &src, &src), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.note.Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_Items(t *testing.T) {
	ctx := context.Background()
	dst := id.New()

	note := NewExchangeNote(TypeImport, nil, &dst)
	note.AddItem("PRD-00001", id.New(), qty(10))
	require.NoError(t, note.Validate(ctx))

	note.AddItem("PRD-00002", id.New(), qty(0))
	assert.Error(t, note.Validate(ctx), "zero quantity must be rejected")

	note.Items[1].Quantity = qty(-3)
	assert.Error(t, note.Validate(ctx), "negative quantity must be rejected")
}

func TestStatusTransitions(t *testing.T) {
	dst := id.New()

	t.Run("pending accept finish", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &dst)
		note.AddItem("PRD-00001", id.New(), qty(5))

		require.NoError(t, note.Accept("MANAGER"))
		assert.Equal(t, entity.StatusAccepted, note.Status)
		assert.Equal(t, "MANAGER", note.ApprovedBy)

		require.NoError(t, note.Finish())
		assert.Equal(t, entity.StatusFinished, note.Status)
		assert.Equal(t, ItemStatusCompleted, note.Items[0].Status)
	})

	t.Run("finish requires accepted", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &dst)
		assert.Error(t, note.Finish())
	})

	t.Run("double accept fails", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &dst)
		require.NoError(t, note.Accept("MANAGER"))
		assert.Error(t, note.Accept("MANAGER"))
	})

	t.Run("reject pending cancels lines", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &dst)
		note.AddItem("PRD-00001", id.New(), qty(5))

		require.NoError(t, note.Reject())
		assert.Equal(t, entity.StatusRejected, note.Status)
		assert.Equal(t, ItemStatusCanceled, note.Items[0].Status)
		assert.Empty(t, note.ActiveItems())
	})

	t.Run("reject accepted", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &dst)
		require.NoError(t, note.Accept("MANAGER"))
		require.NoError(t, note.Reject())
	})

	t.Run("final states are terminal", func(t *testing.T) {
		note := NewExchangeNote(TypeImport, nil, &dst)
		note.AddItem("PRD-00001", id.New(), qty(5))
		require.NoError(t, note.Accept("MANAGER"))
		require.NoError(t, note.Finish())

		assert.Error(t, note.Reject())
		assert.Error(t, note.Accept("MANAGER"))
		assert.Error(t, note.CanModify())
	})
}

func TestGenerateMovements_Import(t *testing.T) {
	ctx := context.Background()
	dst := id.New()
	productID := id.New()

	note := NewExchangeNote(TypeImport, nil, &dst)
	note.AddItem("PRD-00001", productID, qty(50))
	require.NoError(t, note.Accept("MANAGER"))
	require.NoError(t, note.Finish())

	set, err := note.GenerateMovements(ctx)
	require.NoError(t, err)
	require.Len(t, set.Stock, 1)

	m := set.Stock[0]
	assert.Equal(t, entity.RecordTypeReceipt, m.RecordType)
	assert.Equal(t, entity.MovementKindImport, m.Kind)
	assert.Equal(t, dst, m.WarehouseID)
	assert.Equal(t, productID, m.ProductID)
	assert.Equal(t, qty(50), m.Quantity)
	assert.Equal(t, qty(50), m.SignedQuantity())
	assert.Equal(t, note.ID, m.RecorderID)
	assert.Equal(t, "ExchangeNote", m.RecorderType)
}

func TestGenerateMovements_Export(t *testing.T) {
	ctx := context.Background()
	src := id.New()

	note := NewExchangeNote(TypeExport, &src, nil)
	note.AddItem("PRD-00001", id.New(), qty(20))
	require.NoError(t, note.Accept("MANAGER"))
	require.NoError(t, note.Finish())

	set, err := note.GenerateMovements(ctx)
	require.NoError(t, err)
	require.Len(t, set.Stock, 1)

	m := set.Stock[0]
	assert.Equal(t, entity.RecordTypeExpense, m.RecordType)
	assert.Equal(t, entity.MovementKindExport, m.Kind)
	assert.Equal(t, src, m.WarehouseID)
	assert.Equal(t, qty(-20), m.SignedQuantity())
}

func TestGenerateMovements_TransferWritesBothHalves(t *testing.T) {
	ctx := context.Background()
	src := id.New()
	dst := id.New()
	productID := id.New()

	note := NewExchangeNote(TypeTransfer, &src, &dst)
	note.AddItem("PRD-00001", productID, qty(7))
	require.NoError(t, note.Accept("MANAGER"))
	require.NoError(t, note.Finish())

	set, err := note.GenerateMovements(ctx)
	require.NoError(t, err)
	require.Len(t, set.Stock, 2)

	expense := set.Stock[0]
	receipt := set.Stock[1]

	assert.Equal(t, entity.RecordTypeExpense, expense.RecordType)
	assert.Equal(t, src, expense.WarehouseID)
	assert.Equal(t, entity.RecordTypeReceipt, receipt.RecordType)
	assert.Equal(t, dst, receipt.WarehouseID)

	// Both halves carry the TRANSFER kind so they stay out of
	// import/export aggregates.
	assert.Equal(t, entity.MovementKindTransfer, expense.Kind)
	assert.Equal(t, entity.MovementKindTransfer, receipt.Kind)

	// Net effect across warehouses is zero.
	assert.Equal(t, types.Quantity(0), expense.SignedQuantity()+receipt.SignedQuantity())
}

func TestGenerateMovements_SkipsCanceledLines(t *testing.T) {
	ctx := context.Background()
	dst := id.New()

	note := NewExchangeNote(TypeImport, nil, &dst)
	note.AddItem("PRD-00001", id.New(), qty(5))
	note.AddItem("PRD-00002", id.New(), qty(3))
	note.Items[1].Status = ItemStatusCanceled

	require.NoError(t, note.Accept("MANAGER"))
	require.NoError(t, note.Finish())

	set, err := note.GenerateMovements(ctx)
	require.NoError(t, err)
	assert.Len(t, set.Stock, 1)
}

func TestCanPost(t *testing.T) {
	ctx := context.Background()
	dst := id.New()

	note := NewExchangeNote(TypeImport, nil, &dst)
	note.AddItem("PRD-00001", id.New(), qty(5))

	assert.Error(t, note.CanPost(ctx), "pending note must not post")

	require.NoError(t, note.Accept("MANAGER"))
	assert.Error(t, note.CanPost(ctx), "accepted note must not post")

	require.NoError(t, note.Finish())
	assert.NoError(t, note.CanPost(ctx))
}

func TestAddItem_Numbering(t *testing.T) {
	dst := id.New()
	note := NewExchangeNote(TypeImport, nil, &dst)

	first := note.AddItem("PRD-00001", id.New(), qty(1))
	second := note.AddItem("PRD-00002", id.New(), qty(2))

	assert.Equal(t, 1, first.LineNo)
	assert.Equal(t, 2, second.LineNo)
	assert.NotEqual(t, first.LineID, second.LineID)
	assert.Equal(t, ItemStatusPending, first.Status)
}
