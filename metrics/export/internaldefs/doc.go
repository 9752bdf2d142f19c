// Package internaldefs holds the shared metric name and bucket definitions
// used by the exporter packages. It is internal to metrics/export and carries
// no behavior beyond bucket normalization helpers.
package internaldefs
