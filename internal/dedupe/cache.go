package dedupe

import (
	"sync"
	"time"
)

// Key identifica um anúncio já notificado para um destinatário
type Key struct {
	Recipient string
	ListingID string
}

type entry struct {
	key Key
	ts  time.Time
}

// Cache guarda os anúncios já notificados, limitado por capacidade e por idade.
// Quando cheio, os mais antigos são descartados primeiro.
type Cache struct {
	mu       sync.Mutex
	items    map[Key]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache cria um cache com a capacidade e o ttl informados
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		items:    make(map[Key]time.Time, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Seen indica se a chave já foi registrada dentro da janela do ttl.
// Não registra a chave; use Mark para isso.
func (c *Cache) Seen(key Key) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.items[key]
	return ok && now.Sub(ts) <= c.ttl
}

// Mark registra a chave como notificada
func (c *Cache) Mark(key Key) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = now
	c.order = append(c.order, entry{key: key, ts: now})
	c.compact(now)
}

// Len retorna a quantidade de chaves mantidas
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// A chave pode ter sido registrada de novo depois desta entrada
		if ts, ok := c.items[oldest.key]; ok && ts.Equal(oldest.ts) {
			delete(c.items, oldest.key)
		}
	}
}
