package model

import "fmt"

// Status is the borrow-request lifecycle stage. Requests move strictly
// forward through the four stages; there is no branching and no way back.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusDelivered
	StatusReturned
)

var statusNames = [...]string{"Pending", "Approved", "Delivered", "Returned"}

func (s Status) String() string {
	if s < StatusPending || s > StatusReturned {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus maps one of the four fixed tokens to its Status. Anything
// else is rejected, not normalized.
func ParseStatus(raw string) (Status, error) {
	for i, name := range statusNames {
		if raw == name {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}

// Successor returns the next stage in the ordered flow. ok is false for
// StatusReturned, which is terminal.
func (s Status) Successor() (next Status, ok bool) {
	if s < StatusPending || s >= StatusReturned {
		return 0, false
	}
	return s + 1, true
}

func (s Status) MarshalJSON() ([]byte, error) {
	if s < StatusPending || s > StatusReturned {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return []byte(`"` + statusNames[s] + `"`), nil
}

func (s *Status) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("status must be a JSON string")
	}
	parsed, err := ParseStatus(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
