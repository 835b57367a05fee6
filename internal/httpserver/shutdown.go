package httpserver

import "time"

// ShutdownTimeout bounds how long in-flight requests, including uploads still
// streaming to object storage, are given to drain on shutdown.
const ShutdownTimeout = 15 * time.Second
