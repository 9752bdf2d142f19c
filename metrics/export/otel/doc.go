// Package otel bridges authcore metrics into an OpenTelemetry meter.
//
// [NewOTelExporter] registers observable instruments for every authcore
// counter and histogram bucket and feeds them from [authcore.Service]
// snapshots on each collection cycle.
//
// # What this package must NOT do
//
//   - Own a MeterProvider; callers supply the meter and its lifecycle.
//   - Mutate service state.
package otel
