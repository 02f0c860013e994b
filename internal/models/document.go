package models

// Document is an uploaded resume payload. It lives only for the duration of
// one upload action and is never persisted.
type Document struct {
	// ID is the payload identity used to memoize extraction within a session.
	ID       string
	Filename string
	Data     []byte
}

func (d *Document) Size() int64 {
	return int64(len(d.Data))
}
