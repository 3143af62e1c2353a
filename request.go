package exchange

// TransferEncoding is the body framing mode fixed once the request head
// has been parsed.
type TransferEncoding int

const (
	TransferNone TransferEncoding = iota
	TransferChunked
)

// Compression identifies the content/transfer coding layered under the
// framing coding, per the closed set the wire protocol supports.
type Compression int

const (
	CompressionIdentity Compression = iota
	CompressionDeflate
	CompressionGzip
	CompressionXGzip
	CompressionZstd
	// CompressionCompress and CompressionXCompress are recognised tokens
	// that always fail CompressionNotSupported; they exist as named
	// values so the parser can report exactly which unsupported coding
	// was requested instead of a generic failure.
	CompressionCompress
	CompressionXCompress
)

// Request is the structured result of parsing one request head. Every
// byte-slice field is a zero-copy view into the Exchange's client
// header buffer, exactly as the teacher's Request embeds zero-copy
// slices into its pooled buffer: valid only until the next wait() call
// reuses that buffer.
type Request struct {
	MethodID MethodID

	methodBytes  []byte
	targetBytes  []byte
	versionBytes []byte

	ProtoMajor int
	ProtoMinor int

	Headers Header

	HasContentLength bool
	ContentLength    uint64

	TransferEncodingMode TransferEncoding
	TransferCompression  Compression

	// Close records whether this request asked for the connection to
	// close: an explicit "Connection: close", or HTTP/1.0 without
	// "Connection: keep-alive".
	Close bool

	// Trailers, populated by BodyReader once a chunked body's trailer
	// section has been parsed (supplemented feature; spec §4.4 only
	// requires trailers land in headers, this additionally exposes them
	// distinctly from pre-body headers).
	Trailers Header

	// parser tracks the body-framing cursor: remaining identity bytes,
	// or the chunked sub-state machine's progress.
	parser bodyParserState
}

func newRequest() *Request {
	return &Request{Headers: newHeader(), Trailers: newHeader()}
}

// reset clears the Request for reuse by pool.go across Exchanges.
func (r *Request) reset() {
	r.MethodID = MethodOther
	r.methodBytes = nil
	r.targetBytes = nil
	r.versionBytes = nil
	r.ProtoMajor = 0
	r.ProtoMinor = 0
	r.Headers.Reset()
	r.Trailers.Reset()
	r.HasContentLength = false
	r.ContentLength = 0
	r.TransferEncodingMode = TransferNone
	r.TransferCompression = CompressionIdentity
	r.Close = false
	r.parser = bodyParserState{}
}

// Method returns the request-line method token, e.g. "GET", or any
// other token up to MaxMethodLength bytes — the grammar accepts any
// token, not a fixed method set.
func (r *Request) Method() string { return string(r.methodBytes) }

// MethodBytes is the zero-copy form of Method.
func (r *Request) MethodBytes() []byte { return r.methodBytes }

// Target returns the request-target, the substring between the first
// and last space of the request line (so it may itself contain spaces
// if the line had more than two).
func (r *Request) Target() string { return string(r.targetBytes) }

func (r *Request) TargetBytes() []byte { return r.targetBytes }

// Version returns "HTTP/1.0" or "HTTP/1.1".
func (r *Request) Version() string { return string(r.versionBytes) }

// GetHeader returns the first value stored under name.
func (r *Request) GetHeader(name string) []byte { return r.Headers.Get([]byte(name)) }

// TrailerCount returns how many trailer fields were parsed (0 before
// the body has been fully read, or if the request has no trailers).
func (r *Request) TrailerCount() int { return r.Trailers.Len() }

// Trailer returns the first trailer value stored under name.
func (r *Request) Trailer(name string) []byte { return r.Trailers.Get([]byte(name)) }

// HasBody reports whether the request head declared a body, by framing
// mode or a nonzero Content-Length.
func (r *Request) HasBody() bool {
	return r.TransferEncodingMode == TransferChunked || (r.HasContentLength && r.ContentLength > 0)
}

// ExpectsContinue reports whether the client sent "Expect:
// 100-continue" and is waiting for an interim 100 response (sent via
// Exchange.Send(100, "")) before it uploads the request body.
func (r *Request) ExpectsContinue() bool {
	return hasToken(r.Headers.Get(hdrExpect), val100Cont)
}
