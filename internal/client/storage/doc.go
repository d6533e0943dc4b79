// Package storage is the on-device persistence of the client: a SQLite
// database (modernc.org/sqlite, schema managed by goose) holding a small
// key/value table, and the SessionRepository that mirrors the session
// token and user into it.
//
// The session is stored under two fixed keys, TokenKey and UserKey. They
// are written and deleted together in one transaction and read together on
// one scoped connection; a lone key is treated as no session at all.
package storage
