package database

import _ "embed"

// Schema is the current schema as generated from the migrations.
//
//go:embed sqlc/schema.sql
var Schema string
