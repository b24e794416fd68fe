// Package session coordinates access to shared journey state. The engine
// core does not serialize concurrent requests within a journey; the Manager
// here is the layer that must.
package session
