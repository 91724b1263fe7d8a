package pipeline

// Stage is one step of the import pipeline. Forward movement is guarded by
// per-stage completion predicates; backward movement always goes to the
// immediate predecessor and resets the state owned by the stage being left.
type Stage int

const (
	StageDateSelection Stage = iota
	StageUpload
	StagePreview
	StageValidation
	StageCreation
	StageVerification
	StageImport
	StageComplete
)

var stageNames = map[Stage]string{
	StageDateSelection: "date_selection",
	StageUpload:        "upload",
	StagePreview:       "preview",
	StageValidation:    "validation",
	StageCreation:      "creation",
	StageVerification:  "verification",
	StageImport:        "import",
	StageComplete:      "complete",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// prev returns the immediate predecessor, or s itself at the first stage.
func (s Stage) prev() Stage {
	if s <= StageDateSelection {
		return StageDateSelection
	}
	return s - 1
}
