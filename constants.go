package exchange

// Size limits, chosen the way the teacher's constants.go chooses them:
// generous enough for real traffic, small enough to bound memory per
// Exchange.
const (
	// MinClientHeaderBuffer is the smallest client header buffer accepted
	// by NewExchange; below this a request line plus one header cannot
	// possibly fit.
	MinClientHeaderBuffer = 1024

	// DefaultClientHeaderBuffer sizes the client header buffer when the
	// caller does not provide one (see pool.go), within the "8-64 KiB
	// typical" range the design notes describe.
	DefaultClientHeaderBuffer = 16 * 1024

	// DefaultConnBuffer sizes BufferedConnection's read buffer.
	DefaultConnBuffer = 16 * 1024

	// MaxMethodLength bounds the request-line method token.
	MaxMethodLength = 24

	// MinRequestLineLength is the length, counting the trailing CRLF,
	// below which a request line is rejected outright as too short.
	MinRequestLineLength = 10

	// MaxChunkSize bounds a single chunked-body chunk size, guarding
	// against a hostile chunk-size header claiming an enormous chunk.
	MaxChunkSize = 64 * 1024 * 1024
)

var (
	crlf      = []byte("\r\n")
	colonSP   = []byte(": ")
	http10    = []byte("HTTP/1.0")
	http11Lit = []byte("HTTP/1.1")
)

// header name/value byte constants used by the parser and emitter to
// avoid repeated string-to-[]byte conversions on the hot path.
var (
	hdrContentLength    = []byte("Content-Length")
	hdrTransferEncoding = []byte("Transfer-Encoding")
	hdrContentEncoding  = []byte("Content-Encoding")
	hdrConnection       = []byte("Connection")
	hdrExpect           = []byte("Expect")

	valChunked    = []byte("chunked")
	valClose      = []byte("close")
	valKeepAlive  = []byte("keep-alive")
	valIdentity   = []byte("identity")
	val100Cont    = []byte("100-continue")
	valGzip       = []byte("gzip")
	valXGzip      = []byte("x-gzip")
	valDeflate    = []byte("deflate")
	valZstd       = []byte("zstd")
	valCompress   = []byte("compress")
	valXCompress  = []byte("x-compress")
)
