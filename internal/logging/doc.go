// Package logging provides structured logging for the roborock-cfg tool.
//
// Logging is built on zap and is silent by default so that CLI output stays
// clean. Verbosity is controlled through the ROBOROCK_LOG_LEVEL environment
// variable (debug, info, warn, error). Account identifiers are masked before
// they are written to any log sink.
package logging
