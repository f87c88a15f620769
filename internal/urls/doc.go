// Package urls centralizes documentation links shown in CLI output.
package urls
