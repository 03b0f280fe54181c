package uart

import (
	"bytes"
	"testing"
	"time"
)

func TestLoopback_Echo(t *testing.T) {
	l := NewLoopback(1)

	l.PutByte(0, 'a')
	if !l.HasBytes(0, 0) {
		t.Fatalf("written byte must be looped back")
	}
	if c, ok := l.GetByte(0); !ok || c != 'a' {
		t.Fatalf("GetByte returned %q, %v", c, ok)
	}
	if got := string(l.Drain(0)); got != "a" {
		t.Fatalf("unexpected transmit buffer %q", got)
	}
}

func TestLoopback_HasBytesTimeout(t *testing.T) {
	l := NewLoopback(1, WithoutEcho())

	start := time.Now()
	if l.HasBytes(0, 20*time.Millisecond) {
		t.Fatalf("empty unit reported input")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("HasBytes returned before the timeout")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Feed(0, []byte("x"))
	}()
	if !l.HasBytes(0, time.Second) {
		t.Fatalf("fed byte was not reported")
	}
}

func TestLoopback_TxCapacity(t *testing.T) {
	l := NewLoopback(1, WithTxCapacity(2), WithoutEcho())

	l.PutByte(0, 1)
	if free := l.FreeBytes(0); free != 1 {
		t.Fatalf("unexpected free bytes %d", free)
	}
	l.PutByte(0, 2)

	done := make(chan struct{})
	go func() {
		l.PutByte(0, 3)
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("PutByte must block on a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	if got := l.Drain(0); len(got) != 2 {
		t.Fatalf("unexpected drain %v", got)
	}
	<-done
	if free := l.FreeBytes(0); free != 1 {
		t.Fatalf("unexpected free bytes %d", free)
	}
}

func TestLoopback_Close(t *testing.T) {
	l := NewLoopback(1)

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Close()
	}()
	if _, ok := l.GetByte(0); ok {
		t.Fatalf("GetByte must fail once closed")
	}
	if _, ok := l.GetByte(5); ok {
		t.Fatalf("GetByte must fail for unknown units")
	}
}

func TestLoopback_Sink(t *testing.T) {
	var out bytes.Buffer
	l := NewLoopback(2, WithSink(&out), WithTxCapacity(4))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 64 {
			l.PutByte(i%2, 'x')
		}
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("PutByte blocked with a sink configured")
	}

	if out.Len() != 64 {
		t.Fatalf("expected 64 bytes in the sink, got %d", out.Len())
	}
	if got := l.Drain(0); len(got) != 0 {
		t.Fatalf("nothing should be buffered, got %q", got)
	}
	if !l.HasBytes(0, 0) {
		t.Fatalf("written bytes must still be looped back")
	}
}
