package store

import _ "embed"

// Schema holds the DDL for every table the server uses. Integration tests
// apply it to fresh containers; production deployments run it as a migration.
//
//go:embed schema.sql
var Schema string
