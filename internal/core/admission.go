package core

// DenyCode enumerates every reason a join attempt may be refused. Codes go
// over the wire verbatim, so they are stable strings, not free text.
type DenyCode string

const (
	DenyWorldFull       DenyCode = "WorldFull"
	DenyWorldPrivate    DenyCode = "WorldPrivate"
	DenyPaymentRequired DenyCode = "PaymentRequired"
	DenyAlreadyJoined   DenyCode = "AlreadyJoined"
	// DenyRateLimited is issued by the transport, not admission: the join
	// never left the connection. The client should back off and retry.
	DenyRateLimited DenyCode = "RateLimited"
)

// Decision is the outcome of an admission check.
type Decision int

const (
	// Admit lets the join proceed to the room (which still re-validates
	// capacity inside its own serialized processing).
	Admit Decision = iota
	// Deny is a hard refusal carrying one of the DenyCodes.
	Deny
	// RequiresPayment means the caller should redirect to checkout rather
	// than surface an error.
	RequiresPayment
)

// AdmissionError surfaces a refused join to the transport layer.
type AdmissionError struct {
	Code DenyCode
}

func (e *AdmissionError) Error() string { return "admission refused: " + string(e.Code) }
