/*
Package observability turns tool lifecycle events into logs and Prometheus metrics.

Collectors are registered on a caller-supplied registry so tests and embedders can
keep them isolated from the global default. Hooks combines logging and metrics into
a domain.LifecycleHooks value ready for tools.WithLifecycleHooks.
*/
package observability
