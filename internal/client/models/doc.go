// Package models defines the client's domain types: the session and its
// user, packages and their catalogs, and the drafts the forms produce.
package models
