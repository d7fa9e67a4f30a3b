package pool

import (
	"sync"
	"sync/atomic"
)

type TPoolConfig[T any] struct {
	Generate func() *T // constructor, new(T) is used if nil
	Reset    func(*T)  // called after taking *T from the pool
	Cleanup  func(*T)  // called before giving *T back to the pool
}

// TPool is a typed sync.Pool wrapper. Objects handed out by Get are owned by
// the caller until they come back through Put.
type TPool[T any] struct {
	pool sync.Pool
	Conf TPoolConfig[T]

	gets atomic.Int64
	puts atomic.Int64
}

func NewTPool[T any](conf TPoolConfig[T]) *TPool[T] {
	if conf.Generate == nil {
		conf.Generate = func() *T {
			return new(T)
		}
	}
	return &TPool[T]{
		pool: sync.Pool{
			New: func() any {
				return conf.Generate()
			},
		},
		Conf: conf,
	}
}

func (p *TPool[T]) Get() *T {
	r := p.pool.Get().(*T)
	if p.Conf.Reset != nil {
		p.Conf.Reset(r)
	}
	p.gets.Add(1)
	return r
}

// Put returns *r to the pool and clears the caller's reference so the object
// cannot be touched after it was recycled.
func (p *TPool[T]) Put(r **T) {
	if r == nil || *r == nil {
		return
	}
	if p.Conf.Cleanup != nil {
		p.Conf.Cleanup(*r)
	}
	p.pool.Put(*r)
	*r = nil
	p.puts.Add(1)
}

// Outstanding is the number of objects taken by Get and not yet returned.
func (p *TPool[T]) Outstanding() int64 {
	return p.gets.Load() - p.puts.Load()
}
