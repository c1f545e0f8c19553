package request

// Placement selects where an API credential is written by Path.InsertCredential.
type Placement int

const (
	PlacementNone Placement = iota
	PlacementHeader
	PlacementQueryParam
	PlacementBody
)

func (p Placement) String() string {
	switch p {
	case PlacementHeader:
		return "header"
	case PlacementQueryParam:
		return "query"
	case PlacementBody:
		return "body"
	default:
		return "none"
	}
}

// InsertOutcome is the outcome of Path.InsertCredential.
type InsertOutcome int

const (
	// Skipped means nothing was written: PlacementNone, or PlacementBody without a body.
	Skipped InsertOutcome = iota
	// Applied means the credential was written and its value is echoed back.
	Applied
	// AppliedQuiet means the credential was written to the query string, the value is not echoed back.
	AppliedQuiet
)

// InsertResult reports what Path.InsertCredential did.
type InsertResult struct {
	outcome InsertOutcome
	value   string
}

func applied(value string) InsertResult {
	return InsertResult{outcome: Applied, value: value}
}

func appliedQuiet() InsertResult {
	return InsertResult{outcome: AppliedQuiet}
}

func skipped() InsertResult {
	return InsertResult{outcome: Skipped}
}

// Outcome returns the outcome kind.
func (r InsertResult) Outcome() InsertOutcome {
	return r.outcome
}

// Written returns true if the credential has been written to the Path.
func (r InsertResult) Written() bool {
	return r.outcome != Skipped
}

// Value returns the echoed credential value, it is present only for the Applied outcome.
func (r InsertResult) Value() (string, bool) {
	if r.outcome != Applied {
		return "", false
	}
	return r.value, true
}
