// Package observability wires engine lifecycle events to prometheus
// collectors.
package observability
