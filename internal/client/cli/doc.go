// Package cli provides the interactive deliveryio command-line client.
//
// It wires configuration, local session storage, the backend API client,
// the auth and package services, and the router with its guard into a REPL.
// Each screen of the client is a router location; the prompt shows the
// current one and the commands offered depend on whether it belongs to the
// unauthenticated area (/login, /register) or the signed-in area (/, /post).
//
// Typical flow: the session is restored from disk, the guard sends the user
// to /login when there is none, and after login it moves them to the
// package list. The REPL is started via App.Run(ctx), which blocks until the
// user exits.
package cli
