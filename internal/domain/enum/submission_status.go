package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SubmissionStatus represents the outcome of forwarding a confirmed draft
// to the business API
type SubmissionStatus int

const (
	SubmissionStatusPending   SubmissionStatus = 0
	SubmissionStatusSucceeded SubmissionStatus = 1
	SubmissionStatusFailed    SubmissionStatus = 2
)

func (s SubmissionStatus) String() string {
	return [...]string{"Pending", "Succeeded", "Failed"}[s]
}

// ParseSubmissionStatus converts a status name to a SubmissionStatus
func ParseSubmissionStatus(str string) (SubmissionStatus, bool) {
	for i, name := range [...]string{"Pending", "Succeeded", "Failed"} {
		if name == str {
			return SubmissionStatus(i), true
		}
	}
	return SubmissionStatusPending, false
}

func (s SubmissionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SubmissionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SubmissionStatus(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = SubmissionStatusPending
	case "Succeeded":
		*s = SubmissionStatusSucceeded
	case "Failed":
		*s = SubmissionStatusFailed
	}
	return nil
}

func (s SubmissionStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SubmissionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SubmissionStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SubmissionStatus(v)
	case int:
		*s = SubmissionStatus(v)
	}
	return nil
}
