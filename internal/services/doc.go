// Package services implements the business logic layer of the trend analysis
// API. It sits between the HTTP handlers and the dataset registry so that
// ingestion and analysis rules live in one place.
//
// # Available Services
//
//	- DatasetService: upload, list, delete and analyze datasets
//	- HealthService: health, readiness, liveness and version reports
//
// # Error Handling
//
// Services return the application errors from internal/errors unchanged so
// the HTTP layer can map them to problem responses:
//
//	- UNSUPPORTED_FILE_TYPE for uploads that are neither CSV nor Excel
//	- NOT_FOUND for unknown dataset ids
//	- PROCESSING for files that cannot be parsed or analyzed
//	- VALIDATION for malformed analyze options
//
// # Events
//
// DatasetService publishes lifecycle events through an EventPublisher. The
// WebSocket hub implements it; a nil publisher disables events.
//
// # Testing
//
// Services are tested against the in-memory registry with a mocked publisher:
//
//	pub := new(MockPublisher)
//	pub.On("Publish", mock.Anything, events.MessageTypeDatasetDeleted, mock.Anything)
//	svc := NewDatasetService(registry.NewMemoryStore(), logger, WithPublisher(pub))
package services
