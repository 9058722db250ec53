// Package registry keeps uploaded datasets in process memory for the lifetime
// of the server. Nothing is persisted; a restart starts from an empty store.
package registry

import (
	"time"

	"trendapi/internal/dataprocessing"
	"trendapi/pkg/contracts/domain"
)

// Dataset is a registered upload. Table and the dimensions are fixed at
// registration and never change.
type Dataset struct {
	ID          string
	Filename    string
	Table       *dataprocessing.Table
	UploadedAt  time.Time
	RowCount    int
	ColumnCount int
}

// Summary returns the listing view of the dataset
func (d *Dataset) Summary() domain.DatasetSummary {
	return domain.DatasetSummary{
		ID:          d.ID,
		Filename:    d.Filename,
		UploadedAt:  d.UploadedAt,
		RowCount:    d.RowCount,
		ColumnCount: d.ColumnCount,
	}
}

// DatasetStore is the registry contract used by the service layer
type DatasetStore interface {
	Put(filename string, table *dataprocessing.Table) (*Dataset, error)
	Get(id string) (*Dataset, error)
	List() []domain.DatasetSummary
	Delete(id string) error
	Count() int
}
