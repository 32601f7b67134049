package vitals

import "errors"

// ErrMalformedReading marks a reading that failed validation. The reading is
// logged and dropped; it never reaches persistence or aggregation.
var ErrMalformedReading = errors.New("vitals: malformed reading")

// ErrStoreUnavailable marks a durable-store failure surfaced to a
// synchronous query. Ingestion-side store failures are logged and absorbed.
var ErrStoreUnavailable = errors.New("vitals: store unavailable")
