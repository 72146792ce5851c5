package broker

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dbros-oss/lss-broker/pkg/config"
	"github.com/dbros-oss/lss-broker/pkg/document"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/storage"
	"github.com/dbros-oss/lss-broker/pkg/transport"
	"github.com/dbros-oss/lss-broker/pkg/worker"
)

const (
	handlerPoolWorkers = 4
	publishPoolWorkers = 4
	poolQueueCapacity  = 256
)

// Broker is the facade wiring the subscription store, handler registry,
// dispatcher, publish pipeline, storage and transport together, and owns
// their lifecycle (spec.md §4.7).
type Broker struct {
	logger *logging.Logger
	kv     storage.KV
	cfg    *config.Config

	store      *SubscriptionStore
	registry   *HandlerRegistry
	dispatcher *RequestDispatcher
	publish    *PublishPipeline

	handlerPool *worker.Pool
	publishPool *worker.Pool

	server *transport.Server
}

// New returns an unconfigured Broker. Call Configure before Start.
func New(logger *logging.Logger, kv storage.KV) *Broker {
	return &Broker{logger: logger, kv: kv}
}

// Configure implements spec.md §4.7: it parses the configuration JSON,
// wires the store/registry/dispatcher/pipeline/pools, creates the
// HTTP-UDS server bound to lssSocketPath, and installs the built-in
// /subscribe and /unsubscribe handlers. Failure at any step returns an
// error and leaves the broker unusable.
func (b *Broker) Configure(raw []byte) error {
	cfg, err := config.Load(raw)
	if err != nil {
		return err
	}
	b.cfg = cfg

	b.store = NewSubscriptionStore(b.kv, b.logger)
	b.registry = NewHandlerRegistry(b.store, b.logger)

	b.handlerPool = worker.NewPool(handlerPoolWorkers, poolQueueCapacity, b.logger, logging.ComponentDispatch)
	b.publishPool = worker.NewPool(publishPoolWorkers, poolQueueCapacity, b.logger, logging.ComponentPublish)

	b.dispatcher = NewRequestDispatcher(b.registry, b.handlerPool, b.logger)
	b.publish = NewPublishPipeline(b.store, b.publishPool, transport.NewClient(), b.logger)

	b.registry.RegisterHandler("/subscribe", b.handleSubscribe)
	b.registry.RegisterHandler("/unsubscribe", b.handleUnsubscribe)

	b.server = transport.NewServer(cfg.LSSSocketPath, b.logger, b.serveHTTP)
	return nil
}

// Start implements spec.md §4.7: load persisted subscriptions, then start
// accepting connections.
func (b *Broker) Start() error {
	b.store.Load()
	return b.server.Start()
}

// Stop implements spec.md §4.7: stop the HTTP server; in-flight publish
// tasks continue until the pool drains.
func (b *Broker) Stop(ctx context.Context) error {
	if err := b.server.Stop(ctx); err != nil {
		return err
	}
	if err := b.handlerPool.Stop(ctx); err != nil {
		b.logger.Warn(logging.ComponentBroker, "handler pool did not drain cleanly")
	}
	if err := b.publishPool.Stop(ctx); err != nil {
		b.logger.Warn(logging.ComponentBroker, "publish pool did not drain cleanly")
	}
	return nil
}

// RegisterHandler installs fn as the handler for path (spec.md §6
// programmatic contract).
func (b *Broker) RegisterHandler(path string, fn RequestHandler) {
	b.registry.RegisterHandler(path, fn)
}

// RegisterPublishHandler installs any non-nil hook of h on topic id
// (spec.md §6 programmatic contract).
func (b *Broker) RegisterPublishHandler(id string, h Hooks) {
	b.registry.RegisterPublishHandler(id, h)
}

// PublishMessage fans doc out to id's subscribers (spec.md §6 programmatic
// contract). Returns false if id has no registered topic.
func (b *Broker) PublishMessage(id string, doc *document.Document) bool {
	return b.publish.Publish(id, doc)
}

// serveHTTP bridges the transport.Server's raw (method, path, body) into
// the dispatcher's Request abstraction. Dispatch may hand the actual
// response off to a worker-pool task instead of answering inline, so this
// blocks on req.done before returning — otherwise net/http finalizes the
// response the instant ServeHTTP returns, and the worker's later
// Respond call lands on an already-closed request.
func (b *Broker) serveHTTP(w http.ResponseWriter, method, path string, body []byte) {
	req := &httpRequest{w: w, method: method, path: path, body: body, requestID: uuid.NewString(), done: make(chan struct{})}
	b.dispatcher.Dispatch(req)
	<-req.done
}

// httpRequest adapts an http.ResponseWriter into the broker's Request
// interface for one request/response cycle. done is closed by Respond so
// the caller of Dispatch knows it's now safe to let the HTTP handler
// return.
type httpRequest struct {
	w         http.ResponseWriter
	method    string
	path      string
	body      []byte
	requestID string
	done      chan struct{}
}

func (r *httpRequest) Method() string { return r.method }
func (r *httpRequest) Path() string   { return r.path }
func (r *httpRequest) Body() []byte   { return r.body }

func (r *httpRequest) Respond(status int, body []byte) {
	defer close(r.done)
	r.w.Header().Set("X-Request-Id", r.requestID)
	if len(body) > 0 {
		r.w.Header().Set("Content-Type", "application/json")
	}
	r.w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = r.w.Write(body)
	}
}
