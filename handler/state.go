package handler

import (
	"sync"

	"ConferenceBot/model"
	"ConferenceBot/wizard"
)

// chatState is the per-user conversation around one wizard.
type chatState struct {
	wizard *wizard.Wizard

	mu sync.Mutex
	// pending are the fields of the current step still to be asked, in order
	pending []model.Field
}

func newChatState(w *wizard.Wizard) *chatState {
	return &chatState{wizard: w, pending: wizard.StepPersonal.Fields()}
}

func (c *chatState) next() (model.Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return "", false
	}
	return c.pending[0], true
}

// pop removes the field that was just answered and reports whether the step
// has no more fields to ask.
func (c *chatState) pop(f model.Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) > 0 && c.pending[0] == f {
		c.pending = c.pending[1:]
	}
	return len(c.pending) == 0
}

func (c *chatState) ask(fields []model.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = fields
}

// failing returns the step's fields that have a validation error, in step order.
func failing(step wizard.Step, errs wizard.ValidationErrors) []model.Field {
	var out []model.Field
	for _, f := range step.Fields() {
		if _, bad := errs[f]; bad {
			out = append(out, f)
		}
	}
	return out
}
