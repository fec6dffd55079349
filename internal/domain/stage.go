package domain

import "fmt"

// Stage is the intent category of a pending connection request.
type Stage int

const (
	StageIdle Stage = iota
	StageConnect
	StageReconnect
	StageDisconnect
)

var stageNames = map[Stage]string{
	StageIdle:       "IDLE",
	StageConnect:    "CONNECT",
	StageReconnect:  "RECONNECT",
	StageDisconnect: "DISCONNECT",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	for stage, name := range stageNames {
		if name == string(text) {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", text)
}

// Pending reports whether a request in this stage still needs confirmation.
func (s Stage) Pending() bool { return s != StageIdle }
