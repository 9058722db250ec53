// Package app provides application initialization and lifecycle management
// for the trend analysis API. It wires configuration, telemetry, the dataset
// registry, services, HTTP handlers and the WebSocket hub together.
//
// # Initialization Flow
//
//	1. Load configuration (cmd/server calls config.Load)
//	2. Initialize logging and OpenTelemetry
//	3. Create the in-memory dataset registry
//	4. Initialize services with their dependencies
//	5. Set up middleware and routes
//	6. Start the HTTP server and the WebSocket hub
//
// # Usage
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get
// Server.ShutdownTimeout to complete, WebSocket clients are closed and
// telemetry is flushed. Registered datasets are not persisted.
//
// # Error Handling
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
