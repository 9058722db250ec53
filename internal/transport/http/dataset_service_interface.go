package http

import (
	"context"

	"trendapi/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations used by DatasetHandler
type DatasetServiceInterface interface {
	Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error)
	Analyze(ctx context.Context, id string, opts domain.AnalyzeOptions) (*domain.AnalysisResult, error)
	List(ctx context.Context) (*domain.DatasetList, error)
	Delete(ctx context.Context, id string) error
}
