package pipeline

// State is one step of the request state machine. States are visited in
// forward order only; there are no cycles, so every run terminates.
type State int

const (
	StateCheckCache State = iota
	StateLoadMemory
	StateClassifyIntent
	StateGenerate
	StateValidate
	StateExecute
	StatePostProcess
	StateRecordFeedback
	StateError
	StateDone
)

var stateNames = map[State]string{
	StateCheckCache:     "CHECK_CACHE",
	StateLoadMemory:     "LOAD_MEMORY",
	StateClassifyIntent: "CLASSIFY_INTENT",
	StateGenerate:       "GENERATE",
	StateValidate:       "VALIDATE",
	StateExecute:        "EXECUTE",
	StatePostProcess:    "POST_PROCESS",
	StateRecordFeedback: "RECORD_FEEDBACK",
	StateError:          "ERROR",
	StateDone:           "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}
