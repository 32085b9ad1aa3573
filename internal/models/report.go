package models

import "time"

// ReportSeverity tiers a report and selects its side effect.
type ReportSeverity string

const (
	ReportSeverityMinor    ReportSeverity = "minor"
	ReportSeverityModerate ReportSeverity = "moderate"
	ReportSeveritySevere   ReportSeverity = "severe"
)

// Valid reports whether the severity tier is recognised.
func (s ReportSeverity) Valid() bool {
	switch s {
	case ReportSeverityMinor, ReportSeverityModerate, ReportSeveritySevere:
		return true
	}
	return false
}

// Report is one user's report against one document. At most one row exists
// per (document, reporter) pair, enforced by a unique index.
type Report struct {
	ID         string         `db:"id" json:"id"`
	DocumentID int64          `db:"document_id" json:"document_id"`
	ReporterID int64          `db:"reporter_id" json:"reporter_id"`
	Details    string         `db:"details" json:"details"`
	Severity   ReportSeverity `db:"severity" json:"severity"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// ReportDetail joins a report with document context for moderator views.
type ReportDetail struct {
	Report
	DocumentTitle  string         `db:"document_title" json:"document_title"`
	DocumentStatus DocumentStatus `db:"document_status" json:"document_status"`
}
