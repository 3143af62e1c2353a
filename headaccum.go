package exchange

// crlfState is the small state machine used to detect a bare CRLF CRLF
// sequence (an empty line) while scanning an arbitrarily-chunked byte
// stream one byte at a time. Strict CRLF is enforced: a bare LF not
// preceded by CR, or a CR not immediately followed by LF, fails
// HttpHeadersInvalid (Open Question 3, resolved strict).
type crlfState int

const (
	crlfStart crlfState = iota
	crlfSeenCR
	crlfSeenCRLF
	crlfSeenCRLFCR
	crlfComplete
)

// HeadAccumulator incrementally copies raw bytes into an externally
// owned buffer (the client header buffer) and signals when a complete
// head — request-line plus headers, or a trailer section — has been
// captured. The same type serves the request head and, for chunked
// bodies, the trailer section, which BodyReader accumulates in a second
// instance bound to its own trailer buffer; reset() returns an
// accumulator to crlfStart without discarding the caller's buffer
// ownership.
//
// This keeps head-termination detection (this type) and chunk-framing
// detection (chunked.go) as two small, separately testable state
// machines rather than folding both into one enum, which still
// satisfies the externally observable "parser state" the data model
// describes as a single field.
type HeadAccumulator struct {
	buf   []byte // externally owned, grows up to cap(buf)
	state crlfState
}

// NewHeadAccumulator binds a HeadAccumulator to an externally owned
// buffer. The buffer's capacity is the hard upper bound H on head size;
// exceeding it fails HeadersOversize.
func NewHeadAccumulator(buf []byte) *HeadAccumulator {
	return &HeadAccumulator{buf: buf[:0]}
}

// rebind points the accumulator at a (possibly reused) buffer, for
// pooled reuse across Exchanges.
func (h *HeadAccumulator) rebind(buf []byte) {
	h.buf = buf[:0]
	h.state = crlfStart
}

// checkCompleteHead scans peekBytes, copying every scanned byte into
// the internal buffer, and returns how many bytes of peekBytes were
// consumed. The caller must drop(n) that many bytes from the
// connection. Once a bare CRLF CRLF is observed, state transitions to
// complete and scanning stops at the byte immediately following it
// (bytes after that point belong to the body or the next pipelined
// request and are left unconsumed in peekBytes).
func (h *HeadAccumulator) checkCompleteHead(peekBytes []byte) (int, error) {
	for i, b := range peekBytes {
		if len(h.buf) >= cap(h.buf) {
			return i, newErr(HeadersOversize, "head exceeds client header buffer")
		}
		h.buf = append(h.buf, b)

		switch h.state {
		case crlfStart:
			switch b {
			case '\r':
				h.state = crlfSeenCR
			case '\n':
				return i + 1, newErr(HttpHeadersInvalid, "bare LF")
			}
		case crlfSeenCR:
			if b != '\n' {
				return i + 1, newErr(HttpHeadersInvalid, "CR not followed by LF")
			}
			h.state = crlfSeenCRLF
		case crlfSeenCRLF:
			switch b {
			case '\r':
				h.state = crlfSeenCRLFCR
			case '\n':
				return i + 1, newErr(HttpHeadersInvalid, "bare LF")
			default:
				h.state = crlfStart
			}
		case crlfSeenCRLFCR:
			if b != '\n' {
				return i + 1, newErr(HttpHeadersInvalid, "CR not followed by LF")
			}
			h.state = crlfComplete
			return i + 1, nil
		}
	}
	return len(peekBytes), nil
}

// complete reports whether a full head has been accumulated.
func (h *HeadAccumulator) complete() bool { return h.state == crlfComplete }

// get returns the accumulated head bytes, including the terminating
// CRLF CRLF. Valid only once complete() is true.
func (h *HeadAccumulator) get() []byte { return h.buf }

// reset returns the accumulator to its initial state, ready to
// accumulate the next request's head.
func (h *HeadAccumulator) reset() {
	h.buf = h.buf[:0]
	h.state = crlfStart
}
