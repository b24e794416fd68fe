// Package dsl provides a fluent builder for authoring journey definitions
// in Go code, as an alternative to YAML files. It is primarily useful in
// tests and embedded configurations.
package dsl
