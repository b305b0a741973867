package prompts

import "context"

// Defaults composes prompts from the built-in instructions only. It serves
// tools that run without a database.
type Defaults struct{}

// Compose returns the built-in instructions for stage followed by the output specification.
func (Defaults) Compose(_ context.Context, stage Stage) (string, error) {
	text, err := DefaultInstructions(stage)
	if err != nil {
		return "", err
	}
	return compose(text, stage)
}

func compose(instructions string, stage Stage) (string, error) {
	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}
	return instructions + "\n\n" + spec, nil
}
