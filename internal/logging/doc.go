// Package logging provides the leveled logger shared by the thumbnail
// service, the command line tool and the extraction pipeline.
//
// It supports the following log levels:
//   - DEBUG: Pipeline state transitions and decoder details
//   - INFO: General operational messages
//   - WARN: Extraction failures and degraded conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the process
//
// The initial level comes from the DEBUG or LOG_LEVEL environment variables
// and can be changed at runtime with [SetLevel].
package logging
