// Package logger provides structured logging for the traversal engine
// using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-, step- and run-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("barrier").WithStep(step.ID(), traversal.ID())
//	log.Debug("reduction complete", logger.Fields("traversers", n))
package logger
