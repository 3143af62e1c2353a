package exchange

import "bytes"

// bodyMode selects which of the three body-framing shapes §4.4
// describes governs a Request: no body, a fixed-length identity body,
// or a chunked body. Kept as a closed enum rather than an interface so
// BodyReader.readRaw can switch on it without an allocation.
type bodyMode int

const (
	bodyNone bodyMode = iota
	bodyIdentity
	bodyChunked
)

// chunkSubState is the chunk-framing state machine: the sequence every
// chunk cycles through, plus the one-shot trailers/complete tail once a
// zero-size chunk is seen. Deliberately a separate enum from crlfState
// (headaccum.go) rather than folded into one type, per the design note
// resolving Open Question 3's companion question about state-machine
// granularity.
type chunkSubState int

const (
	chunkHeadSize chunkSubState = iota
	chunkHeadExt
	chunkData
	chunkDataSuffix
	chunkTrailers
)

// bodyParserState is the cursor BodyReader advances as it streams a
// request body: for an identity body, remaining counts down from
// Content-Length; for a chunked body, chunkState and remaining track
// progress through the current chunk.
type bodyParserState struct {
	mode       bodyMode
	remaining  uint64
	chunkState chunkSubState
	complete   bool
}

// maxChunkSizeLineLen bounds a chunk-size line (hex digits plus any
// chunk-extension) read byte-by-byte off the wire, so a peer that never
// sends CRLF cannot grow the scan buffer without limit.
const maxChunkSizeLineLen = 256

// readChunkSizeLine reads and parses one "size [; ext] CRLF" line using
// conn directly (not the client header buffer: chunk-size lines are
// transient and don't need to outlive the call). Strict CRLF is
// required, matching headaccum.go's strictness rather than accepting a
// bare LF.
func readChunkSizeLine(conn *BufferedConnection) (uint64, error) {
	var line [maxChunkSizeLineLen]byte
	n := 0
	for {
		b, err := readOneByte(conn)
		if err != nil {
			return 0, err
		}
		if b == '\n' {
			break
		}
		if n >= len(line) {
			return 0, newErr(HttpHeadersInvalid, "chunk size line too long")
		}
		line[n] = b
		n++
	}

	got := line[:n]
	if len(got) == 0 || got[len(got)-1] != '\r' {
		return 0, newErr(HttpHeadersInvalid, "chunk size line missing CR")
	}
	got = got[:len(got)-1]
	if idx := bytes.IndexByte(got, ';'); idx >= 0 {
		got = got[:idx]
	}
	if len(got) == 0 {
		return 0, newErr(HttpHeadersInvalid, "empty chunk size")
	}

	var size uint64
	for _, c := range got {
		var v uint64
		switch {
		case c >= '0' && c <= '9':
			v = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = uint64(c-'A') + 10
		default:
			return 0, newErr(HttpHeadersInvalid, "invalid chunk size digit")
		}
		size = size<<4 | v
		if size > MaxChunkSize {
			return 0, newErr(MessageTooLong, "chunk size exceeds limit")
		}
	}
	return size, nil
}

// expectCRLF consumes exactly "\r\n" from conn, the chunk-data
// terminator and the byte pair between a chunk's data and the next
// chunk-size line.
func expectCRLF(conn *BufferedConnection) error {
	b1, err := readOneByte(conn)
	if err != nil {
		return err
	}
	b2, err := readOneByte(conn)
	if err != nil {
		return err
	}
	if b1 != '\r' || b2 != '\n' {
		return newErr(HttpHeadersInvalid, "malformed chunk terminator")
	}
	return nil
}

// readOneByte pulls a single byte off conn, filling the buffer as
// needed. Used only by the chunk-framing scanners above, where reading
// a byte at a time off a buffered connection costs no extra syscalls.
func readOneByte(conn *BufferedConnection) (byte, error) {
	for {
		p := conn.peek()
		if len(p) > 0 {
			b := p[0]
			conn.drop(1)
			return b, nil
		}
		if err := conn.fill(); err != nil {
			return 0, err
		}
	}
}
