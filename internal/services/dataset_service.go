package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"trendapi/internal/dataprocessing"
	apierrors "trendapi/internal/errors"
	"trendapi/internal/infrastructure"
	"trendapi/internal/registry"
	"trendapi/pkg/contracts/domain"
	"trendapi/pkg/contracts/events"
)

// DefaultPreviewRows is the number of rows echoed back by Upload
const DefaultPreviewRows = 5

// EventPublisher receives dataset lifecycle events. The WebSocket hub
// implements it.
type EventPublisher interface {
	Publish(ctx context.Context, msgType events.MessageType, data interface{})
}

// DatasetService coordinates ingestion, the registry and analysis
type DatasetService struct {
	store       registry.DatasetStore
	publisher   EventPublisher
	tracer      trace.Tracer
	metrics     *infrastructure.DatasetMetrics
	validate    *validator.Validate
	previewRows int
	now         func() time.Time
	logger      *slog.Logger
}

// DatasetServiceOption customizes a DatasetService
type DatasetServiceOption func(*DatasetService)

// WithPublisher sends lifecycle events to p
func WithPublisher(p EventPublisher) DatasetServiceOption {
	return func(s *DatasetService) { s.publisher = p }
}

// WithTracer records a span per operation
func WithTracer(t trace.Tracer) DatasetServiceOption {
	return func(s *DatasetService) { s.tracer = t }
}

// WithMetrics records upload, analysis and delete metrics
func WithMetrics(m *infrastructure.DatasetMetrics) DatasetServiceOption {
	return func(s *DatasetService) { s.metrics = m }
}

// WithPreviewRows sets how many rows Upload returns
func WithPreviewRows(n int) DatasetServiceOption {
	return func(s *DatasetService) { s.previewRows = n }
}

// WithServiceClock overrides the clock used for AnalyzedAt
func WithServiceClock(now func() time.Time) DatasetServiceOption {
	return func(s *DatasetService) { s.now = now }
}

// NewDatasetService creates a dataset service over store
func NewDatasetService(store registry.DatasetStore, logger *slog.Logger, opts ...DatasetServiceOption) *DatasetService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	s := &DatasetService{
		store:       store,
		tracer:      noop.NewTracerProvider().Tracer("services"),
		validate:    validator.New(),
		previewRows: DefaultPreviewRows,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      infrastructure.WithComponent(logger, "dataset_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload parses data according to the extension of filename and registers
// the resulting table.
func (s *DatasetService) Upload(ctx context.Context, filename string, data []byte) (result *domain.UploadResult, err error) {
	ctx, span := s.tracer.Start(ctx, "dataset.upload", trace.WithAttributes(
		attribute.String("dataset.filename", filename),
		attribute.Int("dataset.size_bytes", len(data)),
	))
	defer span.End()

	format, _ := dataprocessing.DetectFormat(filename)
	defer func() {
		infrastructure.RecordUpload(ctx, s.metrics, string(format), len(data), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := dataprocessing.ParseUpload(filename, data)
	if err != nil {
		return nil, err
	}

	ds, err := s.store.Put(filename, table)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("dataset.id", ds.ID))

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", ds.ID),
		slog.String("filename", filename),
		slog.String("format", string(format)),
		slog.Int("rows", ds.RowCount),
		slog.Int("columns", ds.ColumnCount))

	s.publish(ctx, events.MessageTypeDatasetUploaded, events.DatasetUploadedEvent{
		DatasetID:   ds.ID,
		Filename:    ds.Filename,
		RowCount:    ds.RowCount,
		ColumnCount: ds.ColumnCount,
	})

	return &domain.UploadResult{
		DatasetID:   ds.ID,
		Filename:    ds.Filename,
		Columns:     table.ColumnNames(),
		RowCount:    ds.RowCount,
		ColumnCount: ds.ColumnCount,
		Preview:     table.Preview(s.previewRows),
		ColumnTypes: table.ColumnTypes(),
	}, nil
}

// Analyze computes statistics, trends and the summary of a registered
// dataset. Repeated calls on the same dataset return the same numbers.
func (s *DatasetService) Analyze(ctx context.Context, id string, opts domain.AnalyzeOptions) (result *domain.AnalysisResult, err error) {
	ctx, span := s.tracer.Start(ctx, "dataset.analyze", trace.WithAttributes(
		attribute.String("dataset.id", id),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		infrastructure.RecordAnalysis(ctx, s.metrics, time.Since(start), err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
	}()

	if err := s.validateOptions(opts); err != nil {
		return nil, err
	}

	ds, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	analysis, err := dataprocessing.Analyze(ds.Table)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "dataset analyzed",
		slog.String("dataset_id", id),
		slog.Int("numeric_columns", len(analysis.Statistics)),
		slog.Int("trends", len(analysis.Trends)),
		slog.String("query", opts.Query),
		slog.Duration("duration", time.Since(start)))

	s.publish(ctx, events.MessageTypeDatasetAnalyzed, events.DatasetAnalyzedEvent{
		DatasetID:  id,
		Summary:    analysis.Summary,
		TrendCount: len(analysis.Trends),
	})

	return &domain.AnalysisResult{
		DatasetID:  id,
		Summary:    analysis.Summary,
		Statistics: analysis.Statistics,
		Trends:     analysis.Trends,
		AnalyzedAt: s.now(),
		Source:     domain.AnalysisSourceBasic,
	}, nil
}

func (s *DatasetService) validateOptions(opts domain.AnalyzeOptions) error {
	err := s.validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.NewAppValidationError(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
	}
	return apierrors.NewAppValidationError(strings.Join(msgs, "; "))
}

// List returns the summaries of all registered datasets in upload order
func (s *DatasetService) List(ctx context.Context) (*domain.DatasetList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.DatasetList{Datasets: s.store.List()}, nil
}

// Delete removes a dataset from the registry
func (s *DatasetService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := s.tracer.Start(ctx, "dataset.delete", trace.WithAttributes(
		attribute.String("dataset.id", id),
	))
	defer span.End()
	defer func() {
		infrastructure.RecordDelete(ctx, s.metrics, err)
	}()

	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "dataset deleted", slog.String("dataset_id", id))
	s.publish(ctx, events.MessageTypeDatasetDeleted, events.DatasetDeletedEvent{DatasetID: id})
	return nil
}

// Count returns the number of registered datasets
func (s *DatasetService) Count() int {
	return s.store.Count()
}

func (s *DatasetService) publish(ctx context.Context, msgType events.MessageType, data interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, msgType, data)
	}
}
