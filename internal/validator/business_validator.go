package validator

import "fmt"

// ValidateTestCreate checks the cross-field rules struct tags cannot express:
// every question's correct index must point inside its own option list.
func (v *Validator) ValidateTestCreate(req *TestCreateRequest) error {
	if err := v.Validate(req); err != nil {
		return err
	}

	var errs ValidationErrors
	for i, q := range req.Questions {
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("questions[%d].correct_option_index", i),
				Tag:   "option_range",
				Message: fmt.Sprintf("question %d: correct_option_index %d out of range for %d options",
					i, q.CorrectOptionIndex, len(q.Options)),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
