package pipeline

// Stage is the driver state machine. A run moves strictly forward from
// Idle through Done; Failed is reachable from any working stage and is
// terminal. Stage barriers are global: a stage starts only after its
// predecessor finished for every source.
type Stage int

const (
	StageIdle Stage = iota
	StageExtracting
	StageNormalizing
	StageResolving
	StageLoading
	StageDone
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:        "idle",
	StageExtracting:  "extracting",
	StageNormalizing: "normalizing",
	StageResolving:   "resolving",
	StageLoading:     "loading",
	StageDone:        "done",
	StageFailed:      "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// metricNames map working stages to the label values used in stage metrics.
var metricNames = map[Stage]string{
	StageExtracting:  "extract",
	StageNormalizing: "normalize",
	StageResolving:   "resolve",
	StageLoading:     "load",
}
