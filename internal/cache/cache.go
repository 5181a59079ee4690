// Package cache guarda resultados de consultas externas por um tempo
// limitado, para não repetir chamadas de rede dentro da janela de validade.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Cache é o contrato usado pelos clientes externos. Valores são strings
// (normalmente JSON) para que a implementação Redis sirva sem adaptação.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, value string)
}

type entry struct {
	key      string
	value    string
	storedAt time.Time
}

// Memory é um cache em memória com limite de tamanho (descarta o menos
// usado recentemente) e de idade (entrada vencida conta como ausente).
type Memory struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	order    *list.List // frente = mais recente
	items    map[string]*list.Element

	now func() time.Time
}

// NewMemory cria um cache com a capacidade e TTL dados.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity < 1 {
		capacity = 1
	}
	return &Memory{
		capacity: capacity,
		ttl:      ttl,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get retorna o valor da chave se ainda estiver dentro do TTL. Entrada
// vencida é removida e tratada como ausente.
func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}

	en := el.Value.(*entry)
	if c.ttl > 0 && c.now().Sub(en.storedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.items, key)
		return "", false
	}

	c.order.MoveToFront(el)
	return en.value, true
}

// Put grava a chave, substituindo o valor anterior se existir. Acima da
// capacidade, a entrada menos usada recentemente é descartada.
func (c *Memory) Put(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		en := el.Value.(*entry)
		en.value = value
		en.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{key: key, value: value, storedAt: c.now()})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Len retorna o número de entradas, vencidas ou não.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
