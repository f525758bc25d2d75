// Package exporter writes the run outputs as CSV files.
//
// Every file is a full replacement: rows are streamed into a temporary file
// next to the target, which is renamed over the target only after the last
// row was flushed. A failed write leaves the previous file untouched.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	rows, err := w.WriteTable(ctx, paths.HistoryOutput, history)
package exporter
