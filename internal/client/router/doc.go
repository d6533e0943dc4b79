// Package router holds the client's navigation state and the guard that
// keeps it consistent with the session.
//
// A Router is a stack of locations: Push opens a screen, Back returns to the
// previous one and Replace swaps the current one in place. A Guard watches
// the session store, the auth service's loading flag and the router, and
// moves the user between the unauthenticated area (/login, /register) and
// the rest of the app whenever the two disagree.
package router
