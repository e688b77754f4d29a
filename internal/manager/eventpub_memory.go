package manager

import "sync"

// MemoryPublisher records lifecycle events in order. Used by tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	log    []Event
	counts map[string]int
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{counts: make(map[string]int)}
}

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.log = append(p.log, e)
	p.counts[e.Name]++
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.log...)
}

// Names returns the published event names in order.
func (p *MemoryPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.log))
	for i, e := range p.log {
		names[i] = e.Name
	}
	return names
}

// Count returns how many events named name were published.
func (p *MemoryPublisher) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}
