// Package exchange implements the synchronous, single-threaded core of an
// embeddable HTTP/1.x server: per-connection head parsing, body streaming
// with transfer and content coding, response framing, and connection-reuse
// policy. The listening socket and goroutine dispatch live in the sibling
// server package; this package only drives one accepted net.Conn at a time.
package exchange
