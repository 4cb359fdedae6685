// Package artifact persists pipeline tables as CSV files.
//
// Every table has a fixed header row. Rows are decoded by column name, so
// readers tolerate reordered or extra columns. Writes are atomic: rows go to
// a temporary file in the destination directory, which is synced and renamed
// over the target. A reader never observes a partially written table, and
// writing the same rows twice produces byte-identical files.
//
// Missing numeric values are written as empty cells. Floats use the shortest
// representation that round-trips.
package artifact
