// Package httpserver runs the optional metrics endpoint next to a check run.
package httpserver
