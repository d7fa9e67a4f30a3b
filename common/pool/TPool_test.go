package pool

import (
	"testing"
)

type blob struct {
	data  []byte
	dirty bool
}

func TestTPoolHooks(t *testing.T) {
	resets, cleanups := 0, 0
	p := NewTPool(TPoolConfig[blob]{
		Reset: func(b *blob) {
			resets++
			b.dirty = false
		},
		Cleanup: func(b *blob) {
			cleanups++
			b.data = b.data[:0]
		},
	})
	b := p.Get()
	if b == nil {
		t.Fatal("Get returned nil")
	}
	if b.dirty {
		t.Errorf("Reset hook should run on Get")
	}
	b.dirty = true
	b.data = append(b.data, 'x')
	if p.Outstanding() != 1 {
		t.Errorf("expect 1 outstanding, got %v", p.Outstanding())
	}
	p.Put(&b)
	if b != nil {
		t.Errorf("Put should clear the caller reference")
	}
	if resets != 1 || cleanups != 1 {
		t.Errorf("expect 1 reset and 1 cleanup, got %v and %v", resets, cleanups)
	}
	if p.Outstanding() != 0 {
		t.Errorf("expect 0 outstanding, got %v", p.Outstanding())
	}
}

func TestTPoolPutNil(t *testing.T) {
	p := NewTPool(TPoolConfig[blob]{})
	var b *blob
	p.Put(&b)
	p.Put(nil)
	if p.Outstanding() != 0 {
		t.Errorf("nil Put must not be counted, got %v outstanding", p.Outstanding())
	}
}
