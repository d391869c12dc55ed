package ingest

import (
	"fmt"
	"strings"
)

// Operator-facing summary messages.
const (
	MsgInvalidJSON = "Invalid JSON in the uploaded file."
	MsgServerError = "Import failed due to a server error. Enable debug logging for details."
)

// maxReportedErrors bounds the validator errors quoted in an abort message.
const maxReportedErrors = 3

// Kind is the outcome of one feature.
type Kind string

const (
	Imported Kind = "imported"
	Rejected Kind = "rejected"
	Faulted  Kind = "faulted"
)

// Reason recorded for features left unprocessed by a cancelled run.
const ReasonCanceled = "canceled"

// FeatureResult is the outcome of one feature, by source index.
type FeatureResult struct {
	Index    int    `json:"index"`
	GlobalID string `json:"global_id,omitempty"`
	Kind     Kind   `json:"kind"`
	Reason   string `json:"reason,omitempty"`
}

// Summary is the result of one import run. Exactly one of the following holds:
// the run completed (Imported+Skipped == number of features), it was Aborted
// on invalid input, or it Failed on an unexpected error.
type Summary struct {
	RunID    string          `json:"run_id"`
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Aborted  bool            `json:"aborted"`
	Failed   bool            `json:"failed"`
	Errors   []string        `json:"errors,omitempty"`
	Message  string          `json:"message"`
	Results  []FeatureResult `json:"-"`
}

// Completed reports whether every feature was processed.
func (s Summary) Completed() bool { return !s.Aborted && !s.Failed }

// Skips returns the non-imported results in source order.
func (s Summary) Skips() []FeatureResult {
	var out []FeatureResult
	for _, r := range s.Results {
		if r.Kind != Imported {
			out = append(out, r)
		}
	}
	return out
}

// ImportedMessage renders the completion message: "N park(s) imported." plus a skip suffix.
func ImportedMessage(imported, skipped int) string {
	msg := fmt.Sprintf("%d park(s) imported.", imported)
	if skipped > 0 {
		msg += fmt.Sprintf(" %d feature(s) skipped (invalid or missing id/geometry).", skipped)
	}
	return msg
}

// ValidationMessage quotes the first three validator errors, with " …" when there are more.
func ValidationMessage(errs []string) string {
	head := errs
	if len(head) > maxReportedErrors {
		head = head[:maxReportedErrors]
	}
	msg := "GeoJSON validation failed: " + strings.Join(head, " ")
	if len(errs) > maxReportedErrors {
		msg += " …"
	}
	return msg
}
