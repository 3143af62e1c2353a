package exchange

import (
	"net"
	"sync"

	"github.com/valyala/bytebufferpool"
)

// ExchangePool amortizes the per-connection allocations an Exchange
// needs — the Exchange itself, its client header buffer, its trailer
// buffer — across many accepted connections, the way the teacher's
// pool.go amortizes Request/ResponseWriter/Parser allocations with
// sync.Pool. Buffer reuse, not Exchange reuse, is the expensive part
// here (both buffers default to several KB), so unlike the teacher's
// flat package-level pools this type is instantiated once per Server
// and threaded through explicitly rather than reached for as globals.
type ExchangePool struct {
	exchanges sync.Pool

	headerBufSize  int
	trailerBufSize int
}

// NewExchangePool builds an ExchangePool whose client header buffers
// are headerBufSize bytes (the hard cap on request-head size) and
// whose trailer scratch buffers are trailerBufSize bytes.
func NewExchangePool(headerBufSize, trailerBufSize int) *ExchangePool {
	if headerBufSize < MinClientHeaderBuffer {
		headerBufSize = DefaultClientHeaderBuffer
	}
	if trailerBufSize < MinClientHeaderBuffer {
		trailerBufSize = MinClientHeaderBuffer
	}
	p := &ExchangePool{headerBufSize: headerBufSize, trailerBufSize: trailerBufSize}
	p.exchanges.New = func() any {
		headBuf := make([]byte, p.headerBufSize)
		trailerBuf := make([]byte, p.trailerBufSize)
		bc := NewBufferedConnection(nil, DefaultConnBuffer)
		req := newRequest()
		e := &Exchange{
			conn:       bc,
			head:       NewHeadAccumulator(headBuf),
			req:        req,
			resp:       NewResponseEmitter(bc),
			headBuf:    headBuf,
			trailerBuf: trailerBuf,
		}
		e.body = NewBodyReader(bc, req, trailerBuf)
		return e
	}
	return p
}

// Get returns an Exchange bound to conn, either freshly allocated or
// recycled from the pool.
func (p *ExchangePool) Get(conn net.Conn) *Exchange {
	e := p.exchanges.Get().(*Exchange)
	e.rebind(conn, p)
	return e
}

// putExchange returns e to the pool; called by Exchange.Deinit. The
// underlying net.Conn is not closed here — callers that want the
// connection closed must do so themselves before or instead of
// calling Deinit.
func (p *ExchangePool) putExchange(e *Exchange) {
	e.pool = nil
	p.exchanges.Put(e)
}

// scratchPool backs Exchange.ReadAll's accumulation buffer with
// valyala/bytebufferpool instead of a fresh slice per call, the same
// library the examples reach for to pool []byte scratch space around
// request/response bodies.
var scratchPool bytebufferpool.Pool

func getScratch() *bytebufferpool.ByteBuffer  { return scratchPool.Get() }
func putScratch(b *bytebufferpool.ByteBuffer) { scratchPool.Put(b) }
