package identity

import "github.com/google/uuid"

// Kind discriminates what profile an authenticated user resolved to.
type Kind int

const (
	KindUnknown Kind = iota
	KindDoctor
	KindPatient
)

func (k Kind) String() string {
	switch k {
	case KindDoctor:
		return "doctor"
	case KindPatient:
		return "patient"
	default:
		return "unknown"
	}
}

// Caller is the resolved identity of the user behind a request. It is
// resolved once per request in the delivery layer and passed explicitly
// into every lifecycle and chat operation. Profile tables are keyed by
// user id, so UserID doubles as the doctor/patient profile id.
type Caller struct {
	UserID uuid.UUID
	Kind   Kind
}

func (c Caller) IsDoctor() bool {
	return c.Kind == KindDoctor
}

func (c Caller) IsPatient() bool {
	return c.Kind == KindPatient
}
