package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies which classification pass a prompt override targets.
type Stage string

const (
	// StageClassify is the first analysis of a newly received document.
	StageClassify Stage = "classify"
	// StageReanalyze re-runs analysis with the superseded result as context.
	StageReanalyze Stage = "reanalyze"
)

var stages = []Stage{
	StageClassify,
	StageReanalyze,
}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return stages
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
