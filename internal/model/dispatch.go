package model

// AcceptOutcome is everything the dispatch engine needs after a committed
// accept: the resolved request, the winning professional, and the winning
// assignment (for its distance).
type AcceptOutcome struct {
	Request      *Request
	ServiceName  string
	Professional *Professional
	Assignment   *Assignment
}

// DenyOutcome reports a committed deny. Rejected is true only for the call
// that transitioned the request to rejected.
type DenyOutcome struct {
	Request     *Request
	ServiceName string
	Rejected    bool
}
