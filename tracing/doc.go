// Package tracing wraps OpenTelemetry so that engine entry points can open
// spans without importing the SDK. Until Init or InitWithExporter is called
// spans are no-ops.
package tracing
