package normalize

// Report accounts for every row a normalizer saw. Reasons holds one counter
// per reason string; row drops and field-level issues both land there, only
// row drops move Dropped. Total == Valid + Dropped always.
type Report struct {
	Source  string
	Total   int
	Valid   int
	Dropped int
	Reasons map[string]int
}

func newReport(source string) *Report {
	return &Report{Source: source, Reasons: map[string]int{}}
}

// dropRow books one dropped row under reason.
func (r *Report) dropRow(reason string) {
	r.Dropped++
	r.Reasons[reason]++
}

// countField books a field-level issue on a kept row: a nulled value, a
// clamp, or an out-of-enum value passed through.
func (r *Report) countField(reason string) {
	r.Reasons[reason]++
}
