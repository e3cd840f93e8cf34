package core

// IDGenerator issues identifiers for new records
type IDGenerator interface {
	// NewTransactionID returns a time-ordered, globally unique transaction id
	NewTransactionID() string
	// NewEventID returns a random unique id for settlement events
	NewEventID() string
}
