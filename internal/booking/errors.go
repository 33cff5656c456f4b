package booking

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not legal from the current step.
	ErrInvalidTransition = errors.New("booking: invalid transition")
	// ErrDateNotOffered is returned when the date is not in the provider's offerable list.
	ErrDateNotOffered = errors.New("booking: date not offered")
	// ErrSlotNotFound is returned when the slot id is not offered for the selected date.
	ErrSlotNotFound = errors.New("booking: slot not found")
	// ErrSlotUnavailable is returned when selecting a slot with available=false.
	ErrSlotUnavailable = errors.New("booking: slot unavailable")
	// ErrContactIncomplete is returned when name or email is blank.
	ErrContactIncomplete = errors.New("booking: name and email are required")
	// ErrInvalidContact is returned when an enumerated contact field has an unknown value.
	ErrInvalidContact = errors.New("booking: invalid contact form")
	// ErrProviderUnavailable wraps failures of the date/slot provider.
	ErrProviderUnavailable = errors.New("booking: slot provider unavailable")
	// ErrWizardNotFound is returned by the registry for unknown ids.
	ErrWizardNotFound = errors.New("booking: wizard not found")
)
