package memstore

import (
	"sync"

	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

type delivery struct {
	docs []repository.Document
	err  error
}

// subscription backlog ordenado + goroutine que lo entrega. push nunca bloquea.
type subscription struct {
	query      repository.ProductQuery
	onSnapshot repository.SnapshotFunc
	onError    repository.ErrorFunc

	mu      sync.Mutex
	backlog []delivery
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSubscription(q repository.ProductQuery, onSnapshot repository.SnapshotFunc, onError repository.ErrorFunc) *subscription {
	return &subscription{
		query:      q,
		onSnapshot: onSnapshot,
		onError:    onError,
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

func (s *subscription) push(d delivery) {
	s.mu.Lock()
	s.backlog = append(s.backlog, d)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// stop no espera a la goroutine: un callback en curso termina solo.
func (s *subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}
		for {
			d, ok := s.pop()
			if !ok {
				break
			}
			select {
			case <-s.done:
				return
			default:
			}
			if d.err != nil {
				if s.onError != nil {
					s.onError(d.err)
				}
				continue
			}
			s.onSnapshot(d.docs)
		}
	}
}

func (s *subscription) pop() (delivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.backlog) == 0 {
		return delivery{}, false
	}
	d := s.backlog[0]
	s.backlog = s.backlog[1:]
	return d, true
}
