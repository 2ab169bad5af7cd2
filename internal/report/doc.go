// Package report renders mirror run summaries for human consumption.
package report
