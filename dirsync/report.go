package dirsync

import "time"

type Outcome string

const (
	OutcomeSynced  Outcome = "synced"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// RecordReport is the outcome of reconciling a single mapping record.
type RecordReport struct {
	Record     MappingRecord
	Outcome    Outcome
	Reason     string
	Started    time.Time
	Duration   time.Duration
	Users      int
	Candidates int
	Desired    int
	Current    int
	Added      int
	Removed    int
	Failures   int
	Err        error
}

// PassReport aggregates a full reconciliation pass.
type PassReport struct {
	Started  time.Time
	Duration time.Duration
	Records  []RecordReport
}

func (p PassReport) Synced() int  { return p.count(OutcomeSynced) }
func (p PassReport) Skipped() int { return p.count(OutcomeSkipped) }
func (p PassReport) Failed() int  { return p.count(OutcomeFailed) }

func (p PassReport) count(outcome Outcome) int {
	n := 0
	for _, r := range p.Records {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}
