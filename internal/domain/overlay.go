package domain

import "fmt"

type ReviewStatus string

const (
	StatusNew         ReviewStatus = "New"
	StatusUnderReview ReviewStatus = "Under review"
	StatusResolved    ReviewStatus = "Resolved"
	StatusIgnored     ReviewStatus = "Ignored"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusNew, StatusUnderReview, StatusResolved, StatusIgnored:
		return true
	}
	return false
}

func ParseStatus(s string) (ReviewStatus, error) {
	st := ReviewStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Overlay is the operator state layered over one review id.
type Overlay struct {
	Approved bool         `json:"approved"`
	Status   ReviewStatus `json:"status"`
	Note     string       `json:"note"`
}
