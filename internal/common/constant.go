// Package common contains small helpers shared by the deliveryio client
// packages.
package common

// RequestIDHeader carries the per-call id sent with every backend request.
const RequestIDHeader = "X-Request-ID"
