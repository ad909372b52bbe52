package models

import (
	"fmt"
	"strings"
)

// Stage is one phase of the fixed project lifecycle. The stored values carry
// the descriptive labels the existing user_history rows already contain.
type Stage string

const (
	StageDesign      Stage = "Design: Creating the software architecture"
	StageDevelopment Stage = "Development: Writing the actual code"
	StageTesting     Stage = "Testing: Ensuring the software works as expected"
)

// StageOrder is the complete lifecycle in progression order. Progression is
// strictly forward, one stage at a time.
var StageOrder = []Stage{StageDesign, StageDevelopment, StageTesting}

// Short returns the stage name without its descriptive label.
func (s Stage) Short() string {
	name, _, _ := strings.Cut(string(s), ":")
	return name
}

// Index returns the stage's position in the lifecycle, or -1 if unknown.
func (s Stage) Index() int {
	for i, stage := range StageOrder {
		if stage == s {
			return i
		}
	}
	return -1
}

// IsTerminal reports whether completing this stage completes the project.
func (s Stage) IsTerminal() bool {
	return s == StageOrder[len(StageOrder)-1]
}

// Next returns the stage that follows s. ok is false for the terminal stage
// and for unknown values.
func (s Stage) Next() (next Stage, ok bool) {
	i := s.Index()
	if i < 0 || i == len(StageOrder)-1 {
		return "", false
	}
	return StageOrder[i+1], true
}

// ParseStage accepts either a full stage value or its short name.
func ParseStage(v string) (Stage, error) {
	for _, stage := range StageOrder {
		if v == string(stage) || strings.EqualFold(v, stage.Short()) {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown project stage %q", v)
}
