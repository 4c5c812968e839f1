// Package tracing tags inspector requests with req_-prefixed ULID trace
// ids. The id travels on the request context and is echoed in the
// X-Trace-ID response header so log lines and responses correlate.
package tracing
