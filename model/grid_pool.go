package model

import "sync"

// GridToPool returns a grid to the pool for reuse
func GridToPool(grid *Grid, pool *GridPool) {
	if pool == nil || grid == nil {
		return
	}

	pool.Put(grid)
}

// GridPool recycles grids across benchmark runs of the same size.
type GridPool struct {
	pool sync.Pool
}

func NewGridPool() *GridPool {
	return &GridPool{
		pool: sync.Pool{
			New: func() any {
				return NewGrid(0, 0)
			},
		},
	}
}

// Get retrieves an all-dead grid of the requested size. Buffers are reused
// when the pooled grid already has matching dimensions.
func (p *GridPool) Get(height, width int) *Grid {
	g := p.pool.Get().(*Grid)
	if g.height == height && g.width == width {
		g.Clear()
		return g
	}
	if err := g.Resize(height, width); err != nil {
		g.logger.Printf("[GridPool.Get] %v", err)
		_ = g.Resize(0, 0)
	}
	return g
}

// Put returns a grid to the pool, clearing its state
func (p *GridPool) Put(g *Grid) {
	g.Clear()
	p.pool.Put(g)
}
