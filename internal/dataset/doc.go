// Package dataset loads and cleans the regional unemployment CSV into an
// immutable in-memory observation table, and derives the aggregates the
// dashboard displays.
//
// # Cleaning rules
//
// The source file is known to be untidy, so parsing is deliberately
// tolerant:
//
//  1. Header cells are trimmed and duplicated column names dropped,
//     keeping the first occurrence (the file repeats "Region").
//  2. The unemployment rate column is reconciled to a canonical name:
//     an exact match wins, otherwise the first header containing
//     "Unemployment Rate" is renamed, otherwise loading fails.
//  3. Dates use an explicit day-month-year layout; unparsable dates
//     become null.
//  4. Rows with a null Region or Date are dropped (the file contains
//     fully blank lines); unparsable rate cells become null but keep
//     their row.
//
// # Lifecycle
//
// Store loads the table once on first use and caches it for the process
// lifetime. The table is never mutated or invalidated afterwards, so all
// reads are lock-free.
package dataset
