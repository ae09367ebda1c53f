package domain

import (
	"fmt"
	"time"
)

type Verdict string

const (
	VerdictPending      Verdict = "pending"
	VerdictApproved     Verdict = "approved"
	VerdictFlagged      Verdict = "flagged"
	VerdictPostApproved Verdict = "post-approved"
	VerdictRejected     Verdict = "rejected"
)

// Terminal reports whether no further verdicts may follow. Flagged is not
// terminal here: manual review can still escalate it to post-approved or
// rejected. The automated jobs apply a stricter rule and also leave flagged
// batches alone, see TerminalForAutomation.
func (v Verdict) Terminal() bool {
	switch v {
	case VerdictApproved, VerdictPostApproved, VerdictRejected:
		return true
	}
	return false
}

// TerminalForAutomation reports whether the backfill and reconciliation jobs
// must not append past this verdict. Only pending stays eligible.
func (v Verdict) TerminalForAutomation() bool {
	return v != VerdictPending
}

func ParseVerdict(s string) (Verdict, error) {
	switch Verdict(s) {
	case VerdictPending, VerdictApproved, VerdictFlagged, VerdictPostApproved, VerdictRejected:
		return Verdict(s), nil
	}
	return "", fmt.Errorf("unknown verdict %q", s)
}

// EntrySource records which path appended a status entry.
const (
	SourceBackfill       = "backfill"
	SourceReconciliation = "reconciliation"
	SourceManual         = "manual"
)

// StatusEntry is one immutable verdict record in a site's append-only ledger.
// Within a ledger the entries of one batch interleave with other batches';
// the last-appended entry per batch is authoritative.
type StatusEntry struct {
	ID            string    `json:"id"`
	BatchID       int64     `json:"batch_id"`
	Verdict       Verdict   `json:"verdict"`
	Reason        string    `json:"reason"`
	ProductionDay string    `json:"production_day"`
	DecidedAt     time.Time `json:"decided_at"`
	Source        string    `json:"source"`
}

// Process temperature specification, degrees Celsius, both bounds inclusive.
const (
	SpecMinTemp = 520.0
	SpecMaxTemp = 780.0
)

const (
	ReasonNoData    = "no temperature data found for date"
	ReasonInSpec    = "all temperatures in spec"
	ReasonOutOfSpec = "one or more temperatures out of spec"
)

// Evaluate certifies one production day's temperature values. Pure and total:
// empty input yields pending, a single out-of-range value flags the whole day.
func Evaluate(values []float64) (Verdict, string) {
	if len(values) == 0 {
		return VerdictPending, ReasonNoData
	}
	for _, v := range values {
		if v < SpecMinTemp || v > SpecMaxTemp {
			return VerdictFlagged, ReasonOutOfSpec
		}
	}
	return VerdictApproved, ReasonInSpec
}
