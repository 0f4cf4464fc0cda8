package invoice

import "errors"

var (
	// ErrNotFound means no invoice exists for the given id.
	ErrNotFound = errors.New("invoice not found")

	// ErrDuplicateID means the store rejected an insert because the
	// invoice id already exists. The caller should retry with a fresh id.
	ErrDuplicateID = errors.New("invoice id already exists")

	// ErrConflict means a conditional status transition matched zero rows:
	// the invoice was not in a state the transition allows.
	ErrConflict = errors.New("invoice status conflict")

	// ErrGenerationExhausted means id generation kept colliding until the
	// retry budget ran out. Practically this signals a broken random
	// source or a corrupted table and must be surfaced to the operator.
	ErrGenerationExhausted = errors.New("invoice id generation exhausted")
)
