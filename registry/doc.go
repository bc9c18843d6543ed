// Package registry provides thread-safe registration and lookup of agents,
// indexed by id, domain and capability name. The conductor consults it while
// validating plans and the engine resolves step agents through it.
package registry
