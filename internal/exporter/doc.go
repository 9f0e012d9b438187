// Package exporter turns the cleaned observation table into downloadable
// artifacts: an Excel workbook with observation and region-average sheets,
// and a BOM-prefixed CSV for spreadsheet compatibility.
package exporter
