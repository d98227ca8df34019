package booking

import "github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"

var transitions = map[model.Status][]model.Status{
	model.StatusPending:   {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

// Transition checks that a reservation may move from one status to another.
func Transition(from, to model.Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return newError(KindInvalidTransition, "cannot change status from %s to %s", from, to)
}

// Editable reports whether client details, notes or start time may still change.
func Editable(s model.Status) bool {
	return s.Blocking()
}

func actionFor(to model.Status) string {
	switch to {
	case model.StatusConfirmed:
		return model.ActionConfirmed
	case model.StatusCancelled:
		return model.ActionCancelled
	case model.StatusCompleted:
		return model.ActionCompleted
	}
	return string(to)
}
