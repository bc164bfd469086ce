package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует *image.RGBA одного размера между кадрами
// растеризации, чтобы не нагружать GC при пакетном экспорте.
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

func GetImage(size image.Point) *image.RGBA { return globalPool.Get(size) }

func PutImage(img *image.RGBA) { globalPool.Put(img) }

// Get returns a cleared w×h image anchored at the origin.
func (p *ImagePool) Get(size image.Point) *image.RGBA {
	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		if pool, ok = p.pools[size]; !ok {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rectangle{Max: size})
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// Put returns img to the pool of its size. Images of unknown size are
// dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Size()]
	p.mu.RUnlock()
	if ok && img.Rect.Min == (image.Point{}) {
		pool.Put(img)
	}
}
