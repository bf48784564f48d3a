package forms

import "strings"

// Step is one screen of a multi-step form. Check validates the submitted
// field values for this step only.
type Step struct {
	Name   string
	Title  string
	Fields []string // field names this step owns
	Prefix string   // dynamic field-name prefix this step also owns
	Check  func(fields map[string]string) Errors
}

// Wizard is an ordered sequence of steps sharing one draft field map.
type Wizard struct {
	Kind  string
	Steps []Step
}

// StepCount returns the number of steps.
func (w *Wizard) StepCount() int { return len(w.Steps) }

// StepAt returns the step at the given 1-indexed position.
// POST: out-of-range positions clamp to the first or last step
func (w *Wizard) StepAt(n int) (Step, int) {
	if n < 1 {
		n = 1
	}
	if n > len(w.Steps) {
		n = len(w.Steps)
	}
	return w.Steps[n-1], n
}

// Merge copies the submitted values for the given step's fields into the
// draft map. Fields belonging to other steps are left untouched so going
// back never loses later answers.
func (w *Wizard) Merge(draft map[string]string, step Step, submitted map[string]string) map[string]string {
	if draft == nil {
		draft = make(map[string]string)
	}
	for _, f := range step.Fields {
		if v, ok := submitted[f]; ok {
			draft[f] = v
		}
	}
	if step.Prefix != "" {
		for k := range draft {
			if strings.HasPrefix(k, step.Prefix) {
				delete(draft, k)
			}
		}
		for k, v := range submitted {
			if strings.HasPrefix(k, step.Prefix) {
				draft[k] = v
			}
		}
	}
	return draft
}

// Advance validates the current step against the draft and returns the
// next step number. INVARIANT: a step with errors never advances.
func (w *Wizard) Advance(draft map[string]string, current int) (int, Errors) {
	step, n := w.StepAt(current)
	if step.Check != nil {
		if errs := step.Check(draft); len(errs) > 0 {
			return n, errs
		}
	}
	if n < len(w.Steps) {
		return n + 1, nil
	}
	return n, nil
}

// Back returns the previous step number. Going back is always allowed
// and never validates.
func (w *Wizard) Back(current int) int {
	if current <= 1 {
		return 1
	}
	return current - 1
}

// CheckAll re-validates every step against the full draft, for the final
// submit. POST: nil means all steps pass.
func (w *Wizard) CheckAll(draft map[string]string) Errors {
	for _, step := range w.Steps {
		if step.Check == nil {
			continue
		}
		if errs := step.Check(draft); len(errs) > 0 {
			return errs
		}
	}
	return nil
}
