// Package aggregate implements the pure rollup transformations: daily table
// building, monthly, yearly, provincial, statistics, and comfort ranking.
//
// Functions here never touch the filesystem. Inputs are typed rows; outputs
// are typed rows in a deterministic order, so identical inputs always yield
// identical artifacts.
package aggregate
