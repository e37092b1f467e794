/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package migrations

import "embed"

// FS contains the embedded SQLite migrations.
//
//go:embed *.sql
var FS embed.FS
