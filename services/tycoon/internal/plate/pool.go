package plate

import (
	"github.com/appetiteclub/takoyaki/pkg/enums/doneness"
	"github.com/appetiteclub/takoyaki/pkg/enums/topping"
)

const DefaultCapacity = 10

// Pool is the bounded serving area. Items keep their arrival order.
type Pool struct {
	capacity int
	items    []Item
}

func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool{capacity: capacity, items: make([]Item, 0, capacity)}
}

// Place appends a new undressed item. It returns false when the pool is full.
func (p *Pool) Place(level doneness.Level) bool {
	if p.Full() {
		return false
	}
	p.items = append(p.items, NewItem(level))
	return true
}

func (p *Pool) AddSauce(index int) bool {
	item := p.item(index)
	if item == nil {
		return false
	}
	return item.AddSauce()
}

func (p *Pool) AddTopping(index int, t topping.Topping) bool {
	item := p.item(index)
	if item == nil {
		return false
	}
	return item.AddTopping(t)
}

// Items returns a copy of the pool contents.
func (p *Pool) Items() []Item {
	items := make([]Item, len(p.items))
	copy(items, p.items)
	return items
}

func (p *Pool) Len() int { return len(p.items) }

func (p *Pool) Capacity() int { return p.capacity }

func (p *Pool) Full() bool { return len(p.items) >= p.capacity }

// ReadyCount counts sauced, perfectly cooked items.
func (p *Pool) ReadyCount() int {
	n := 0
	for _, item := range p.items {
		if item.Ready() {
			n++
		}
	}
	return n
}

// Drain removes up to n items from the front and returns them.
func (p *Pool) Drain(n int) []Item {
	if n > len(p.items) {
		n = len(p.items)
	}
	if n <= 0 {
		return nil
	}
	drained := make([]Item, n)
	copy(drained, p.items[:n])
	p.items = append(p.items[:0], p.items[n:]...)
	return drained
}

func (p *Pool) Clear() {
	p.items = p.items[:0]
}

func (p *Pool) item(index int) *Item {
	if index < 0 || index >= len(p.items) {
		return nil
	}
	return &p.items[index]
}
