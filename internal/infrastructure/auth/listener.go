package auth

import (
	"sync"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
)

// listener cola ordenada de notificaciones de sesión entregadas desde su propia goroutine.
type listener struct {
	fn repository.SessionListener

	mu      sync.Mutex
	backlog []*entity.Identity
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newListener(fn repository.SessionListener) *listener {
	return &listener{
		fn:     fn,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (l *listener) push(id *entity.Identity) {
	l.mu.Lock()
	l.backlog = append(l.backlog, id)
	l.mu.Unlock()
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

func (l *listener) stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *listener) run() {
	for {
		select {
		case <-l.done:
			return
		case <-l.notify:
		}
		for {
			l.mu.Lock()
			if len(l.backlog) == 0 {
				l.mu.Unlock()
				break
			}
			id := l.backlog[0]
			l.backlog = l.backlog[1:]
			l.mu.Unlock()

			select {
			case <-l.done:
				return
			default:
			}
			l.fn(id)
		}
	}
}
