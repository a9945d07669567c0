package renderer

import "sync"

// CommandBufferPool recycles command buffers between passes and frames.
type CommandBufferPool struct {
	pool sync.Pool
}

func NewCommandBufferPool() *CommandBufferPool {
	return &CommandBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewCommandBuffer("")
			},
		},
	}
}

// Get returns an empty command buffer with the given name.
func (p *CommandBufferPool) Get(name string) *CommandBuffer {
	cb := p.pool.Get().(*CommandBuffer)
	cb.Name = name
	cb.Clear()
	return cb
}

// Release returns the buffer to the pool. The buffer must not be used
// afterwards.
func (p *CommandBufferPool) Release(cb *CommandBuffer) {
	if cb == nil {
		return
	}
	cb.Clear()
	cb.Name = ""
	p.pool.Put(cb)
}
