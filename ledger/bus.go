package ledger

import "sync"

// Notification topics, one per collection.
const (
	TopicPolicies      = "policies"
	TopicSubscriptions = "subscriptions"
	TopicClaims        = "claims"
	TopicProposals     = "proposals"
	TopicUsers         = "users"
	TopicDeposits      = "deposits"
	TopicPool          = "pool"
	TopicAudit         = "audit"
)

// Topics lists every topic the service emits.
var Topics = []string{
	TopicPolicies, TopicSubscriptions, TopicClaims, TopicProposals,
	TopicUsers, TopicDeposits, TopicPool, TopicAudit,
}

type bus struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func()
}

func newBus() *bus {
	return &bus{subs: make(map[string]map[int]func())}
}

func (b *bus) subscribe(topic string, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}
	b.subs[topic][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
		})
	}
}

// emit calls the topic's handlers synchronously. Handlers run without the
// bus lock held so they may subscribe or unsubscribe.
func (b *bus) emit(topic string) {
	b.mu.RLock()
	handlers := make([]func(), 0, len(b.subs[topic]))
	for _, fn := range b.subs[topic] {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}
