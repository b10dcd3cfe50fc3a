package game

import "encoding/json"

// Status is the lifecycle state of a quiz room.
type Status int

const (
	StatusLobby Status = iota
	StatusPlaying
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusLobby:
		return "LOBBY"
	case StatusPlaying:
		return "PLAYING"
	case StatusEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON serializes Status as a string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes Status from a string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "PLAYING":
		*s = StatusPlaying
	case "ENDED":
		*s = StatusEnded
	default:
		*s = StatusLobby
	}
	return nil
}
