//go:build cgo

package sqlstore

import _ "github.com/mattn/go-sqlite3" // registers "sqlite3"
