// Package model defines the values that flow through a check run: jobs taken
// from the input list, per-attempt outcomes, final results and the ordered report.
package model
