// Package report renders check results: a line per result on the console as
// it completes, a summary at the end, and the full run document as JSON or YAML.
package report
