package orchestrator

import "sync"

// Observer receives each published result. Implementations must not block:
// notification happens on whichever goroutine finished the cycle.
type Observer interface {
	ResultPublished(Result)
}

// observerList is an explicit observer registry: observers are added and
// removed by identity, and notification iterates a copied slice so an
// observer may add or remove observers (including itself) mid-notification.
type observerList struct {
	mu        sync.Mutex
	observers []Observer
}

func newObserverList() *observerList {
	return &observerList{}
}

func (l *observerList) add(o Observer) {
	if o == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.observers {
		if existing == o {
			return
		}
	}
	l.observers = append(l.observers, o)
}

func (l *observerList) remove(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.observers {
		if existing == o {
			l.observers = append(l.observers[:i], l.observers[i+1:]...)
			return
		}
	}
}

func (l *observerList) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = nil
}

func (l *observerList) publish(r Result) {
	l.mu.Lock()
	snapshot := make([]Observer, len(l.observers))
	copy(snapshot, l.observers)
	l.mu.Unlock()
	for _, o := range snapshot {
		o.ResultPublished(r)
	}
}

// AddObserver registers an observer for published results.
func (o *Orchestrator) AddObserver(obs Observer) {
	o.observers.add(obs)
}

// RemoveObserver deregisters by identity.
func (o *Orchestrator) RemoveObserver(obs Observer) {
	o.observers.remove(obs)
}
