// Command schemastore manages content-type schemas stored in Postgres or
// SQLite.
//
// Usage:
//
//	schemastore [--config file] <command>
//
// Schemas are imported from and exported to YAML documents; see the
// schemafile package for the document layout.
package main

func main() {
	Execute()
}
