// Package logging builds slog loggers for console and JSON output.
//
// The console handler renders one line per record with a UTC timestamp,
// a level label (colored when writing to a terminal), the message, and
// flattened key=value attributes. The JSON handler is the stdlib handler
// with normalized ts/level/msg keys. NewFromConfig wires the configured
// format, level, and optional log directory.
package logging
