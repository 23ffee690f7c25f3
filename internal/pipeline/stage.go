package pipeline

// Stage is one of the five fixed phases a reading session passes through.
// A session holds exactly one stage at a time and only moves forward.
type Stage string

const (
	StageRecording    Stage = "recording"
	StageUploading    Stage = "uploading"
	StageTranscribing Stage = "transcribing"
	StageSynthesizing Stage = "synthesizing"
	StageCompleting   Stage = "completing"
)

var stageOrder = []Stage{
	StageRecording,
	StageUploading,
	StageTranscribing,
	StageSynthesizing,
	StageCompleting,
}

// Stages returns the full ordered lifecycle.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index returns the stage's position in the lifecycle, or -1 for an
// unknown value.
func (s Stage) Index() int {
	for i, stage := range stageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the following stage, or false from the final stage.
func (s Stage) Next() (Stage, bool) {
	i := s.Index()
	if i < 0 || i == len(stageOrder)-1 {
		return "", false
	}
	return stageOrder[i+1], true
}

// CanTransition reports whether a session may move from one stage to
// another: exactly one step forward, never backward, never skipping.
func CanTransition(from, to Stage) bool {
	fi, ti := from.Index(), to.Index()
	return fi >= 0 && ti >= 0 && ti == fi+1
}
