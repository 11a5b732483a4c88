package stock_check

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

func TestAddLine_ExpectedQuantity(t *testing.T) {
	note := NewStockCheckNote(id.New(), "STAFF")

	// Previous count 0, imported 50, exported 20 since then.
	line := note.AddLine(id.New(), qty(0), qty(50), qty(20), qty(28))

	assert.Equal(t, qty(30), line.ExpectedQuantity)
	assert.Equal(t, qty(-2), line.Difference())
	assert.Equal(t, LineStatusTemporary, line.Status)
	assert.False(t, line.CountedAt.IsZero())
}

func TestDifference_Surplus(t *testing.T) {
	note := NewStockCheckNote(id.New(), "STAFF")

	line := note.AddLine(id.New(), qty(10), qty(5), qty(3), qty(15))

	assert.Equal(t, qty(12), line.ExpectedQuantity)
	assert.Equal(t, qty(3), line.Difference())
}

func TestSetActualQuantity(t *testing.T) {
	note := NewStockCheckNote(id.New(), "STAFF")
	productID := id.New()
	note.AddLine(productID, qty(0), qty(10), qty(0), qty(10))

	require.NoError(t, note.SetActualQuantity(productID, qty(8)))
	assert.Equal(t, qty(8), note.FindLine(productID).ActualQuantity)
	assert.Equal(t, qty(-2), note.FindLine(productID).Difference())

	err := note.SetActualQuantity(id.New(), qty(1))
	assert.Error(t, err, "unknown product must be rejected")
}

func TestRemoveLine_Renumbers(t *testing.T) {
	note := NewStockCheckNote(id.New(), "STAFF")
	first := id.New()
	second := id.New()
	third := id.New()
	note.AddLine(first, qty(0), qty(1), qty(0), qty(1))
	note.AddLine(second, qty(0), qty(2), qty(0), qty(2))
	note.AddLine(third, qty(0), qty(3), qty(0), qty(3))

	require.NoError(t, note.RemoveLine(second))

	require.Len(t, note.Lines, 2)
	assert.Equal(t, 1, note.Lines[0].LineNo)
	assert.Equal(t, 2, note.Lines[1].LineNo)
	assert.Equal(t, third, note.Lines[1].ProductID)

	assert.Error(t, note.RemoveLine(second))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	note := NewStockCheckNote(id.New(), "STAFF")
	note.AddLine(id.New(), qty(0), qty(10), qty(0), qty(10))
	require.NoError(t, note.Validate(ctx))

	t.Run("missing warehouse", func(t *testing.T) {
		bad := NewStockCheckNote(id.Nil(), "STAFF")
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("missing checker", func(t *testing.T) {
		bad := NewStockCheckNote(id.New(), "")
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("negative actual quantity", func(t *testing.T) {
		bad := NewStockCheckNote(id.New(), "STAFF")
		bad.AddLine(id.New(), qty(0), qty(10), qty(0), qty(-1))
		assert.Error(t, bad.Validate(ctx))
	})

	t.Run("zero actual quantity is a valid count", func(t *testing.T) {
		ok := NewStockCheckNote(id.New(), "STAFF")
		ok.AddLine(id.New(), qty(5), qty(0), qty(0), qty(0))
		assert.NoError(t, ok.Validate(ctx))
	})

	t.Run("duplicate product", func(t *testing.T) {
		bad := NewStockCheckNote(id.New(), "STAFF")
		productID := id.New()
		bad.AddLine(productID, qty(0), qty(10), qty(0), qty(10))
		bad.AddLine(productID, qty(0), qty(10), qty(0), qty(9))
		assert.Error(t, bad.Validate(ctx), "one count per product per note")
	})
}

func TestStatusTransitions(t *testing.T) {
	t.Run("pending accept finish", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		note.AddLine(id.New(), qty(0), qty(10), qty(0), qty(10))

		require.NoError(t, note.Accept())
		assert.Equal(t, entity.StatusAccepted, note.Status)

		require.NoError(t, note.Finish())
		assert.Equal(t, entity.StatusFinished, note.Status)
		assert.Equal(t, LineStatusFinished, note.Lines[0].Status)
	})

	t.Run("finish requires accepted", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		note.AddLine(id.New(), qty(0), qty(10), qty(0), qty(10))
		assert.Error(t, note.Finish())
	})

	t.Run("finish requires lines", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		require.NoError(t, note.Accept())
		assert.Error(t, note.Finish())
	})

	t.Run("reject clears lines", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		note.AddLine(id.New(), qty(0), qty(10), qty(0), qty(10))
		require.NoError(t, note.Accept())

		require.NoError(t, note.Reject())
		assert.Equal(t, entity.StatusRejected, note.Status)
		assert.Empty(t, note.Lines)
	})

	t.Run("reject requires accepted", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		note.AddLine(id.New(), qty(0), qty(10), qty(0), qty(10))

		assert.Error(t, note.Reject())
		assert.Equal(t, entity.StatusPending, note.Status)
		assert.Len(t, note.Lines, 1, "a failed reject must not drop the count")
	})

	t.Run("reject requires lines", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		require.NoError(t, note.Accept())

		assert.Error(t, note.Reject())
		assert.Equal(t, entity.StatusAccepted, note.Status)
	})

	t.Run("lines editable while accepted", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		productID := id.New()
		note.AddLine(productID, qty(0), qty(10), qty(0), qty(10))
		require.NoError(t, note.Accept())

		assert.NoError(t, note.SetActualQuantity(productID, qty(9)))
	})

	t.Run("final states are frozen", func(t *testing.T) {
		note := NewStockCheckNote(id.New(), "STAFF")
		productID := id.New()
		note.AddLine(productID, qty(0), qty(10), qty(0), qty(10))
		require.NoError(t, note.Accept())
		require.NoError(t, note.Finish())

		assert.Error(t, note.Accept())
		assert.Error(t, note.Reject())
		assert.Error(t, note.SetActualQuantity(productID, qty(1)))
		assert.Error(t, note.RemoveLine(productID))
	})
}
