package exchange

import "testing"

func TestHeaderAddGetDuplicate(t *testing.T) {
	h := newHeader()
	if err := h.Add([]byte("Set-Cookie"), []byte("a=1")); err != nil {
		t.Fatal(err)
	}
	if err := h.Add([]byte("Set-Cookie"), []byte("b=2")); err != nil {
		t.Fatal(err)
	}
	vals := h.Values([]byte("set-cookie"))
	if len(vals) != 2 || string(vals[0]) != "a=1" || string(vals[1]) != "b=2" {
		t.Fatalf("unexpected values: %v", vals)
	}
	if got := h.Get([]byte("SET-COOKIE")); string(got) != "a=1" {
		t.Fatalf("Get should return first value, got %q", got)
	}
}

func TestHeaderSetReplacesAll(t *testing.T) {
	h := newHeader()
	h.Add([]byte("X-A"), []byte("1"))
	h.Add([]byte("X-A"), []byte("2"))
	if err := h.Set([]byte("X-A"), []byte("3")); err != nil {
		t.Fatal(err)
	}
	if n := h.Count([]byte("X-A")); n != 1 {
		t.Fatalf("expected 1 field after Set, got %d", n)
	}
	if got := h.Get([]byte("X-A")); string(got) != "3" {
		t.Fatalf("got %q", got)
	}
}

func TestHeaderRejectsCRLFInjection(t *testing.T) {
	h := newHeader()
	if err := h.Add([]byte("X-A"), []byte("v\r\nEvil: 1")); err == nil {
		t.Fatal("expected CRLF injection to be rejected")
	}
}

func TestHeaderResetShrinksAboveHighWaterMark(t *testing.T) {
	h := newHeader()
	for i := 0; i < headerHighWaterMark+1; i++ {
		h.Add([]byte("X-A"), []byte("v"))
	}
	if cap(h.fields) <= headerHighWaterMark {
		t.Fatalf("expected capacity to grow beyond high-water mark, got %d", cap(h.fields))
	}
	h.Reset()
	if cap(h.fields) != DefaultHeaderCapacity {
		t.Fatalf("expected Reset to shrink backing array, got cap %d", cap(h.fields))
	}
}

func TestHeaderResetRetainsCapacityBelowMark(t *testing.T) {
	h := newHeader()
	h.Add([]byte("X-A"), []byte("v"))
	before := cap(h.fields)
	h.Reset()
	if cap(h.fields) != before {
		t.Fatalf("expected Reset to retain capacity %d, got %d", before, cap(h.fields))
	}
	if h.Len() != 0 {
		t.Fatalf("expected Len 0 after Reset, got %d", h.Len())
	}
}
