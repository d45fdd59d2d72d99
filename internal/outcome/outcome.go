// Package outcome names the result of a best-effort mutation.
package outcome

// Outcome reports whether a best-effort operation changed anything.
type Outcome int

const (
	// Skipped means there was nothing to do, e.g. no file in the upload slot.
	Skipped Outcome = iota
	// Applied means the change was made.
	Applied
	// Rejected means the input was refused and prior state kept.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	default:
		return "skipped"
	}
}
