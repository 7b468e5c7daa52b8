package gateway

import (
	"github.com/vadiminshakov/satp/core/dto"
	"github.com/vadiminshakov/satp/core/errs"
)

// transitions allows every step to be followed by its immediate successor only.
var transitions = buildTransitions()

func buildTransitions() map[dto.Step]map[dto.Step]struct{} {
	tr := make(map[dto.Step]map[dto.Step]struct{}, len(dto.Steps()))
	for _, step := range dto.Steps() {
		if next, ok := step.Next(); ok {
			tr[step] = map[dto.Step]struct{}{next: {}}
		}
	}
	return tr
}

func checkTransition(from, to dto.Step) error {
	if allowed, ok := transitions[from]; ok {
		if _, ok = allowed[to]; ok {
			return nil
		}
	}

	return errs.Validation("invalid step transition %s -> %s", from, to)
}
