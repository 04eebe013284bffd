package gns3

// Kind classifies a backend failure.
type Kind int

const (
	// KindConnection means the GNS3 server could not be reached at all.
	KindConnection Kind = iota
	// KindTimeout means the call exceeded the configured deadline.
	KindTimeout
	// KindRejected means the server answered with a non-success status.
	KindRejected
	// KindMalformed means the response body could not be decoded.
	KindMalformed
)

// Error is a normalized GNS3 API failure. Every transport, HTTP and
// decoding problem in the client is converted into one of these
// before it reaches a tool handler, so handlers only ever deal with a
// single error shape.
type Error struct {
	Kind    Kind
	Op      string // API operation, e.g. "list_projects"
	Status  int    // HTTP status for KindRejected, 0 otherwise
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
