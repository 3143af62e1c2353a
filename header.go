package exchange

// headerField is one ordered multi-map entry. Name and value are
// zero-copy slices into the Exchange's client header buffer: valid only
// until the buffer is reused by the next wait().
type headerField struct {
	name, value []byte
}

// DefaultHeaderCapacity is the initial backing-slice capacity for a
// fresh Header; see Header.Reset for the high-water-mark shrink policy
// built on top of it.
const DefaultHeaderCapacity = 32

// headerHighWaterMark is the multiple of DefaultHeaderCapacity beyond
// which Reset replaces the backing slice instead of truncating it, so
// one abusive request with thousands of headers cannot pin a large
// array in a pooled Exchange forever.
const headerHighWaterMark = 4 * DefaultHeaderCapacity

// Header is an ordered, case-insensitive multi-map of header fields,
// preserving duplicate names (required for repeated Set-Cookie and for
// trailers) in the order they were added.
type Header struct {
	fields []headerField
}

func newHeader() Header {
	return Header{fields: make([]headerField, 0, DefaultHeaderCapacity)}
}

// Add appends a header field, rejecting CR/LF in either name or value
// (response-splitting / header-injection protection).
func (h *Header) Add(name, value []byte) error {
	for _, b := range name {
		if b == '\r' || b == '\n' {
			return newErr(HttpHeadersInvalid, "CR/LF in header name")
		}
	}
	for _, b := range value {
		if b == '\r' || b == '\n' {
			return newErr(HttpHeadersInvalid, "CR/LF in header value")
		}
	}
	h.fields = append(h.fields, headerField{name: name, value: value})
	return nil
}

// Set replaces all existing fields named name with a single field
// carrying value, appending if name was absent. Used by ResponseEmitter
// header synthesis, where "application already supplied this header"
// must win over synthesis without producing duplicates.
func (h *Header) Set(name, value []byte) error {
	for _, b := range value {
		if b == '\r' || b == '\n' {
			return newErr(HttpHeadersInvalid, "CR/LF in header value")
		}
	}
	for i := range h.fields {
		if equalFold(h.fields[i].name, name) {
			h.fields[i].value = value
			h.fields = removeMatching(h.fields, i+1, name)
			return nil
		}
	}
	return h.Add(name, value)
}

func removeMatching(fields []headerField, from int, name []byte) []headerField {
	out := fields[:from]
	for _, f := range fields[from:] {
		if !equalFold(f.name, name) {
			out = append(out, f)
		}
	}
	return out
}

// Get returns the first value stored under name, or nil if absent.
func (h *Header) Get(name []byte) []byte {
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			return f.value
		}
	}
	return nil
}

// Values returns every value stored under name, in insertion order.
func (h *Header) Values(name []byte) [][]byte {
	var out [][]byte
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			out = append(out, f.value)
		}
	}
	return out
}

// Has reports whether name occurs at least once.
func (h *Header) Has(name []byte) bool {
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			return true
		}
	}
	return false
}

// Count returns how many (name, name-matching) fields occur under name.
func (h *Header) Count(name []byte) int {
	n := 0
	for _, f := range h.fields {
		if equalFold(f.name, name) {
			n++
		}
	}
	return n
}

// Len returns the total number of fields.
func (h *Header) Len() int { return len(h.fields) }

// VisitAll calls fn for every field in insertion order.
func (h *Header) VisitAll(fn func(name, value []byte)) {
	for _, f := range h.fields {
		fn(f.name, f.value)
	}
}

// Reset empties the multi-map for reuse, resolving Open Question 2: the
// backing slice is truncated in place (retaining capacity) so that the
// common case of reusing an Exchange across keep-alive requests costs
// no allocation, except when the slice has grown far beyond ordinary
// traffic, in which case it is replaced with a fresh, small one so a
// single abusive request cannot leave a pooled Exchange holding an
// oversized array indefinitely.
func (h *Header) Reset() {
	if cap(h.fields) > headerHighWaterMark {
		h.fields = make([]headerField, 0, DefaultHeaderCapacity)
		return
	}
	h.fields = h.fields[:0]
}

func equalFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if lowerByte(a[i]) != lowerByte(b[i]) {
			return false
		}
	}
	return true
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 32
	}
	return b
}
