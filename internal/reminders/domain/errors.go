package reminders

import "errors"

// ErrNotFound marks a lookup or delete against an unknown reminder id.
var ErrNotFound = errors.New("reminders: not found")
