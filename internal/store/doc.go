// Package store keeps finished run documents in Redis so other tools can
// fetch a report by run ID until it expires.
package store
