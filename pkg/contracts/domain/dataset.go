package domain

import (
	"time"
)

// DatasetSummary is the listing view of a registered dataset
type DatasetSummary struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	UploadedAt  time.Time `json:"uploaded_at"`
	RowCount    int       `json:"row_count"`
	ColumnCount int       `json:"column_count"`
}

// DatasetList is the response of the dataset listing endpoint
type DatasetList struct {
	Datasets []DatasetSummary `json:"datasets"`
}

// UploadResult describes a freshly ingested dataset
type UploadResult struct {
	DatasetID   string                   `json:"dataset_id"`
	Filename    string                   `json:"filename"`
	Columns     []string                 `json:"columns"`
	RowCount    int                      `json:"row_count"`
	ColumnCount int                      `json:"column_count"`
	Preview     []map[string]interface{} `json:"preview"`
	ColumnTypes map[string]string        `json:"column_types"`
}

// DeleteResult is returned after a dataset has been removed
type DeleteResult struct {
	Message string `json:"message"`
}

// DatasetDeletedMessage is the confirmation text for a successful delete
const DatasetDeletedMessage = "Dataset deleted successfully"
