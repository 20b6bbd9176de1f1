// Package timeouts defines the shared timeout constants for the HTTP
// surface, kept in one place so the server and its tests agree.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight
// requests during graceful shutdown.
const Shutdown = 5 * time.Second
