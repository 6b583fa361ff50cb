// Package tables registers the record kinds known to the importer.
// Import this package to ensure the built-in kinds are registered.
package tables

// Built-in kinds register themselves in init(). Extra kinds can be loaded
// from schema files with LoadDir.
