package broker

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dbros-oss/lss-broker/pkg/logging"
)

// HandlerRegistry holds the path-keyed request handler table under its own
// handlerMutex (spec.md §5) and forwards publish-handler registration to
// the SubscriptionStore, whose subscriptionMutex already guards
// publishHandlers (spec.md §4.3, §5).
type HandlerRegistry struct {
	mu       sync.Mutex
	handlers map[string]RequestHandler
	store    *SubscriptionStore
	logger   *logging.Logger
}

// NewHandlerRegistry returns a registry backed by store for publish hooks.
func NewHandlerRegistry(store *SubscriptionStore, logger *logging.Logger) *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]RequestHandler),
		store:    store,
		logger:   logger,
	}
}

// RegisterHandler installs fn for path, overwriting and warn-logging any
// prior handler on the same path (spec.md §3 Lifecycles).
func (r *HandlerRegistry) RegisterHandler(path string, fn RequestHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[path]; exists {
		r.logger.Warn(logging.ComponentDispatch, "overwriting existing handler", zap.String("path", path))
	}
	r.handlers[path] = fn
}

// Lookup returns the handler for path, copying the handle out under the
// lock; the caller runs it outside the lock (spec.md §5).
func (r *HandlerRegistry) Lookup(path string) (RequestHandler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.handlers[path]
	return fn, ok
}

// RegisterPublishHandler overwrites any non-nil hook field of h on topic
// id, ensuring the topic exists (spec.md §4.3). publishHandlers lives
// under the SubscriptionStore's subscriptionMutex, not handlerMutex.
func (r *HandlerRegistry) RegisterPublishHandler(id string, h Hooks) {
	r.store.RegisterHooks(id, h)
}
