package domain

type ReturnStatus string

const (
	ReturnStatusNone     ReturnStatus = "NONE"
	ReturnStatusSuccess  ReturnStatus = "SUCCESS"
	ReturnStatusCanceled ReturnStatus = "CANCELED"
)

// String representation (for logging)
func (s ReturnStatus) String() string {
	return string(s)
}
