// Package urls reads the list of URLs to check from a text file and from
// command line arguments.
package urls
