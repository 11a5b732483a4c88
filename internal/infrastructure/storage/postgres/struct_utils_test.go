package postgres

import (
	"stockyard/internal/core/entity"
	"stockyard/internal/core/id"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

type testDocument struct {
	entity.BaseDocument
	Number string `db:"number" json:"number"`
}

func TestExtractDBColumns_EmbeddedBase(t *testing.T) {
	cols := ExtractDBColumns[testCatalog]()

	expectedCols := []string{"id", "deletion_mark", "version", "code", "name"}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestExtractDBColumns_DocumentAuditFields(t *testing.T) {
	cols := ExtractDBColumns[testDocument]()

	expectedCols := []string{
		"id", "deletion_mark", "version",
		"created_at", "updated_at", "created_by", "updated_by",
		"number",
	}
	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_EmbeddedBase(t *testing.T) {
	cat := testCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "TEST",
		Name: "Test Name",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
}

func TestStructToMap_DocumentTimestamps(t *testing.T) {
	now := time.Now().UTC()
	doc := testDocument{
		BaseDocument: entity.BaseDocument{
			BaseEntity: entity.BaseEntity{ID: id.New(), Version: 1},
			CreatedAt:  now,
			UpdatedAt:  now,
			CreatedBy:  "ADMIN",
		},
		Number: "EXN-2026-00001",
	}

	m := StructToMap(doc)

	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "ADMIN", m["created_by"])
	assert.Equal(t, "EXN-2026-00001", m["number"])
}
