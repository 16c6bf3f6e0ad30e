package services

// Outcome reports what happened to the side effects of a workflow step.
// Store and mail failures never fail the step itself; they are recorded
// here (and logged) so callers and tests can tell "persisted and notified"
// apart from the degraded cases.
type Outcome struct {
	// Persisted is true when the store write succeeded, or when the step
	// required no write.
	Persisted bool
	// Notified is true when the notification was handed to the transport.
	Notified bool
	// NotifyErr is the transport error, including mail.ErrNotConfigured.
	NotifyErr error
	// StoreErr is the load or save error that was swallowed.
	StoreErr error
}

// Degraded reports whether any side effect failed.
func (o Outcome) Degraded() bool { return o.StoreErr != nil || o.NotifyErr != nil }
