package enum

import (
	"encoding/json"
)

// DraftState is the position of a transaction draft in the
// confirm-then-submit flow
type DraftState int

const (
	DraftStateEditing    DraftState = 0
	DraftStateConfirming DraftState = 1
	DraftStateSubmitted  DraftState = 2
)

func (s DraftState) String() string {
	return [...]string{"editing", "confirming", "submitted"}[s]
}

func (s DraftState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DraftState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = DraftState(i)
		return nil
	}
	switch str {
	case "editing":
		*s = DraftStateEditing
	case "confirming":
		*s = DraftStateConfirming
	case "submitted":
		*s = DraftStateSubmitted
	}
	return nil
}
