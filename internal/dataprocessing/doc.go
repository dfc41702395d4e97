// Package dataprocessing implements the measurement ingestion pipeline: the
// workbook loader that produces a validated, time-indexed measurement table,
// the summarizer that derives the fixed indicator set, and the chart-group
// builder the dashboard renders from.
package dataprocessing
