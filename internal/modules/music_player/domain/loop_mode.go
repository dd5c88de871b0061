package domain

// LoopMode controls what happens to a track once it finishes.
type LoopMode int

const (
	LoopModeNone  LoopMode = iota // drop finished tracks
	LoopModeTrack                 // replay the current track
	LoopModeQueue                 // re-append finished tracks to the end of the queue
)

var loopModeNames = map[LoopMode]string{
	LoopModeNone:  "none",
	LoopModeTrack: "track",
	LoopModeQueue: "queue",
}

func (m LoopMode) String() string {
	if name, ok := loopModeNames[m]; ok {
		return name
	}
	return loopModeNames[LoopModeNone]
}

// Next cycles none -> track -> queue -> none.
func (m LoopMode) Next() LoopMode {
	switch m {
	case LoopModeNone:
		return LoopModeTrack
	case LoopModeTrack:
		return LoopModeQueue
	default:
		return LoopModeNone
	}
}

// ParseLoopMode converts a command option value to a LoopMode.
// The boolean is false for unknown values.
func ParseLoopMode(s string) (LoopMode, bool) {
	for mode, name := range loopModeNames {
		if name == s {
			return mode, true
		}
	}
	return LoopModeNone, false
}
