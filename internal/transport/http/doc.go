// Package http implements the HTTP request handlers of the trend analysis
// API. Handlers are a thin layer: they parse the request, call a service and
// render the result, leaving business rules to internal/services.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Registry
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Endpoints
//
//	GET    /                         service status
//	POST   /api/upload               multipart field "file", CSV or Excel
//	POST   /api/analyze/{dataset_id} statistics, trends and summary
//	GET    /api/datasets             registered datasets
//	DELETE /api/datasets/{dataset_id}
//	GET    /api/health, /api/health/ready, /api/health/live, /api/version
//
// # Error Handling
//
// Every failure is passed to errors.ErrorHandler, which renders an RFC 7807
// problem document:
//
//	{
//	    "type": "/errors/dataset/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Dataset not found",
//	    "instance": "/api/analyze/123",
//	    "trace_id": "5f0c..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against either a mocked service or the
// real service over an in-memory registry.
package http
