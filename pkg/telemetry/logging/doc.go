// Package logging wires the process-wide structured logger. All
// components log through log/slog with a component attribute; this
// package only translates configuration into the default handler.
package logging
