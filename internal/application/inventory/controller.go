// Package inventory coordina sesión, sincronización y escrituras en un único loop de eventos y
// publica el estado que consume la capa de presentación.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-sync/internal/application/catalog"
	"github.com/jhoicas/Inventario-sync/internal/application/dto"
	"github.com/jhoicas/Inventario-sync/internal/application/session"
	"github.com/jhoicas/Inventario-sync/internal/application/validation"
	"github.com/jhoicas/Inventario-sync/internal/application/view"
	"github.com/jhoicas/Inventario-sync/internal/domain"
	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/domain/repository"
	"github.com/jhoicas/Inventario-sync/pkg/logger"
	"github.com/jhoicas/Inventario-sync/pkg/metrics"
)

// DefaultQueueSize capacidad del canal de eventos si no se configura.
const DefaultQueueSize = 64

// ErrStopped el loop ya terminó.
var ErrStopped = errors.New("controlador detenido")

// ErrNoAuthenticator el proveedor no admite login/registro con contraseña.
var ErrNoAuthenticator = errors.New("el proveedor de sesión no admite login con contraseña")

// Config parámetros del controlador.
type Config struct {
	QueueSize int
	Clock     func() time.Time // reloj del gateway; nil = time.Now
}

// State estado publicado: inmutable, se reemplaza completo después de cada evento.
type State struct {
	Loading   bool
	Identity  *entity.Identity
	Status    catalog.Status
	Products  []entity.Product
	Filter    view.Filter
	View      view.View
	SyncError error
	Version   uint64
}

type (
	sessionEvent      struct{ identity *entity.Identity }
	notificationEvent struct{ n catalog.Notification }
	filterEvent       struct {
		filter view.Filter
		done   chan struct{}
	}
)

// Controller dueño del estado de la presentación.
//
// Run es la única goroutine que toca Synchronizer y filtro. Las notificaciones de sesión y de
// la suscripción, y los comandos de filtro, entran por un canal acotado y se procesan de a uno.
// Las escrituras corren en la goroutine del llamador y no tocan estado del loop.
type Controller struct {
	sessions  *session.Manager
	auth      repository.Authenticator
	sync      *catalog.Synchronizer
	gateway   *catalog.Gateway
	validator *validation.Validator
	log       zerolog.Logger

	events  chan any
	stopped chan struct{}
	running atomic.Bool

	// Estado del loop.
	loading bool
	filter  view.Filter
	version uint64

	state atomic.Pointer[State]

	mu       sync.Mutex
	watchers map[chan *State]struct{}
}

// NewController arma el controlador. auth puede ser nil si el proveedor no admite login
// con contraseña.
func NewController(
	sessions *session.Manager,
	store repository.DocumentStore,
	auth repository.Authenticator,
	val *validation.Validator,
	cfg Config,
	log *logger.Logger,
) *Controller {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	var gwOpts []catalog.GatewayOption
	if cfg.Clock != nil {
		gwOpts = append(gwOpts, catalog.WithClock(cfg.Clock))
	}

	c := &Controller{
		sessions:  sessions,
		auth:      auth,
		gateway:   catalog.NewGateway(store, log.Component("gateway"), gwOpts...),
		validator: val,
		log:       log.Component("controller"),
		events:    make(chan any, cfg.QueueSize),
		stopped:   make(chan struct{}),
		loading:   true,
		watchers:  make(map[chan *State]struct{}),
	}
	c.sync = catalog.NewSynchronizer(store, func(n catalog.Notification) {
		c.enqueue(notificationEvent{n: n})
	}, log.Component("sync"))
	c.state.Store(c.snapshot())
	return c
}

// Run registra el listener de sesión y procesa eventos hasta que ctx se cancele.
// Devuelve *domain.AuthError si el proveedor rechaza el listener.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyStarted
	}
	defer c.shutdown()

	if err := c.sessions.Start(func(id *entity.Identity) {
		c.enqueue(sessionEvent{identity: id})
	}); err != nil {
		return err
	}
	c.log.Info().Int("queue_size", cap(c.events)).Msg("loop de sincronización iniciado")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("loop de sincronización detenido")
			return nil
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

// State último estado publicado.
func (c *Controller) State() *State {
	return c.state.Load()
}

// Watch entrega el estado actual y luego cada estado nuevo. Si el lector se atrasa solo
// recibe el último. El canal se cierra cuando ctx termina o el loop se detiene.
func (c *Controller) Watch(ctx context.Context) <-chan *State {
	ch := make(chan *State, 1)
	ch <- c.State()

	c.mu.Lock()
	select {
	case <-c.stopped:
		c.mu.Unlock()
		close(ch)
		return ch
	default:
	}
	c.watchers[ch] = struct{}{}
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.stopped:
		}
		c.mu.Lock()
		if _, ok := c.watchers[ch]; ok {
			delete(c.watchers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}()
	return ch
}

// FormCategories categorías que acepta el formulario de producto.
func (c *Controller) FormCategories() []string {
	return c.validator.Categories()
}

// RequestCreate valida y crea un producto para userID, que debe ser la identidad viva.
// Devuelve el id asignado; el producto aparece en el estado con la siguiente notificación del store.
func (c *Controller) RequestCreate(ctx context.Context, userID string, req dto.ProductRequest) (string, error) {
	fields, err := c.validator.Product(req)
	if err != nil {
		return "", err
	}
	return c.gateway.Create(ctx, c.owner(userID), fields)
}

// RequestUpdate valida y reemplaza los campos de negocio del producto id de userID.
func (c *Controller) RequestUpdate(ctx context.Context, userID, id string, req dto.ProductRequest) error {
	fields, err := c.validator.Product(req)
	if err != nil {
		return err
	}
	return c.gateway.Update(ctx, c.owner(userID), id, fields)
}

// RequestDelete elimina el producto id de userID.
func (c *Controller) RequestDelete(ctx context.Context, userID, id string) error {
	return c.gateway.Delete(ctx, c.owner(userID), id)
}

// owner devuelve userID si coincide con la identidad publicada; "" si no hay sesión o es otra.
// El gateway rechaza "" con ErrUnauthorized.
func (c *Controller) owner(userID string) string {
	if id := c.State().Identity; id != nil && userID != "" && id.ID == userID {
		return userID
	}
	return ""
}

// SetFilter cambia búsqueda y categoría. Retorna cuando el estado con el nuevo filtro ya
// fue publicado.
func (c *Controller) SetFilter(ctx context.Context, f view.Filter) error {
	done := make(chan struct{})
	if !c.send(ctx, filterEvent{filter: f, done: done}) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrStopped
	}
}

// Login inicia sesión y espera a que el estado publicado refleje la nueva identidad.
func (c *Controller) Login(ctx context.Context, email, password string) (*entity.Identity, error) {
	if c.auth == nil {
		return nil, ErrNoAuthenticator
	}
	id, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.awaitIdentity(ctx, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Register crea la cuenta, inicia sesión y espera a que el estado la refleje.
func (c *Controller) Register(ctx context.Context, email, password string) (*entity.Identity, error) {
	if c.auth == nil {
		return nil, ErrNoAuthenticator
	}
	id, err := c.auth.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.awaitIdentity(ctx, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Logout cierra la sesión y espera a que el estado quede sin identidad.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.sessions.SignOut(ctx); err != nil {
		return err
	}
	return c.awaitIdentity(ctx, nil)
}

func (c *Controller) awaitIdentity(ctx context.Context, want *entity.Identity) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for st := range c.Watch(ctx) {
		if !st.Loading && st.Identity.Same(want) {
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrStopped
}

// enqueue entrega un evento desde goroutines del proveedor o del store. Bloquea si la cola
// está llena; descarta si el loop ya terminó.
func (c *Controller) enqueue(ev any) {
	select {
	case c.events <- ev:
	case <-c.stopped:
	}
}

func (c *Controller) send(ctx context.Context, ev any) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-c.stopped:
		return false
	}
}

func (c *Controller) handle(ctx context.Context, ev any) {
	switch e := ev.(type) {
	case sessionEvent:
		metrics.LoopEvents.WithLabelValues("session").Inc()
		c.loading = false
		if !e.identity.Same(c.sync.Identity()) {
			c.filter = view.Filter{}
		}
		// La falla al abrir queda en LastError y se publica con el estado.
		_ = c.sync.SetIdentity(ctx, e.identity)
		c.publish()

	case notificationEvent:
		metrics.LoopEvents.WithLabelValues("notification").Inc()
		if c.sync.Apply(e.n) {
			c.publish()
		}

	case filterEvent:
		metrics.LoopEvents.WithLabelValues("filter").Inc()
		c.filter = e.filter
		c.publish()
		close(e.done)

	default:
		c.log.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("evento desconocido")
	}
}

func (c *Controller) snapshot() *State {
	products := c.sync.Products()
	c.version++
	return &State{
		Loading:   c.loading,
		Identity:  c.sync.Identity(),
		Status:    c.sync.Status(),
		Products:  products,
		Filter:    c.filter,
		View:      view.Compute(products, c.filter),
		SyncError: c.sync.LastError(),
		Version:   c.version,
	}
}

func (c *Controller) publish() {
	st := c.snapshot()
	c.state.Store(st)

	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.watchers {
		select {
		case ch <- st:
		default:
			// Solo el loop escribe: tras vaciar hay lugar.
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}

// shutdown libera primero a quien esté bloqueado en enqueue y después cierra la suscripción.
func (c *Controller) shutdown() {
	c.mu.Lock()
	close(c.stopped)
	for ch := range c.watchers {
		delete(c.watchers, ch)
		close(ch)
	}
	c.mu.Unlock()

	c.sessions.Stop()
	c.sync.Close()
}
