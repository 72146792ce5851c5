package broker

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/dbros-oss/lss-broker/pkg/document"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/transport"
	"github.com/dbros-oss/lss-broker/pkg/worker"
)

// deliverer is the outbound leg the publish pipeline POSTs deliveries
// through; transport.Client satisfies it. Abstracted so tests can swap in
// a fake without a real socket (spec.md §1: "abstracted as a unix-socket
// POST transport").
type deliverer interface {
	Post(ctx context.Context, socketPath, path string, body []byte) (status int, respBody []byte, err error)
}

// PublishPipeline fans `Publish` out to every subscriber of a topic on the
// publish executor, applying the retry/eviction policy of spec.md §4.5.
type PublishPipeline struct {
	store     *SubscriptionStore
	pool      *worker.Pool
	transport deliverer
	logger    *logging.Logger
}

// NewPublishPipeline returns a pipeline delivering through transportClient
// and dispatching delivery tasks onto pool.
func NewPublishPipeline(store *SubscriptionStore, pool *worker.Pool, transportClient deliverer, logger *logging.Logger) *PublishPipeline {
	return &PublishPipeline{store: store, pool: pool, transport: transportClient, logger: logger}
}

// Publish snapshots id's subscribers and submits one delivery task per
// subscriber to the publish executor, returning immediately (spec.md
// §4.5). Returns false if id has no registered topic.
func (p *PublishPipeline) Publish(id string, message *document.Document) bool {
	if !p.store.TopicExists(id) {
		return false
	}

	hooks := p.store.HooksOf(id)
	for _, sub := range p.store.SubscribersOf(id) {
		sub := sub
		var msg *document.Document
		if message != nil {
			msg = message.Clone()
		}
		p.pool.Submit(func() {
			p.deliver(id, sub, msg, hooks.Request, hooks.Response)
		})
	}
	return true
}

// deliver implements spec.md §4.5's payload determination and response
// disposition tables. message is the caller-supplied payload, or nil if
// the requestHook should synthesize one.
func (p *PublishPipeline) deliver(id string, sub Subscriber, message *document.Document, requestHook RequestHook, responseHook ResponseHook) {
	payload, ok := p.resolvePayload(message, requestHook)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), transport.RequestTimeout)
	defer cancel()

	status, respBody, err := p.transport.Post(ctx, sub.Endpoint, sub.Path, payload.Bytes())
	p.logger.Debug(logging.ComponentPublish, "delivery attempt",
		zap.String("topic", id), zap.String("endpoint", sub.Endpoint), zap.String("path", sub.Path),
		logging.Redacted("payload", payload.Bytes()))

	if err != nil {
		p.handleTransportError(id, sub, message, requestHook, responseHook, err)
		return
	}

	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		p.handleSuccess(id, sub, respBody, responseHook)
		return
	}

	p.evict(id, sub, "non-2xx delivery status", zap.Int("status", status))
}

func (p *PublishPipeline) resolvePayload(message *document.Document, requestHook RequestHook) (*document.Document, bool) {
	if message != nil {
		return message, true
	}
	if requestHook != nil {
		doc := document.Empty()
		if !requestHook(doc) {
			p.logger.Warn(logging.ComponentPublish, "request hook failed; aborting delivery")
			return nil, false
		}
		return doc, true
	}
	return document.Empty(), true
}

func (p *PublishPipeline) handleSuccess(id string, sub Subscriber, respBody []byte, responseHook ResponseHook) {
	if len(respBody) == 0 || responseHook == nil {
		return
	}
	doc, err := document.Parse(respBody)
	if err != nil {
		p.logger.Warn(logging.ComponentPublish, "subscriber response is not valid JSON", zap.Error(err))
		return
	}
	if !responseHook(doc) {
		p.logger.Warn(logging.ComponentPublish, "response hook failed", zap.String("topic", id))
	}
}

func (p *PublishPipeline) handleTransportError(id string, sub Subscriber, message *document.Document, requestHook RequestHook, responseHook ResponseHook, err error) {
	switch classifyDeliveryError(err) {
	case deliveryTimeout:
		p.logger.Warn(logging.ComponentPublish, "delivery timed out; resubmitting",
			zap.String("topic", id), zap.String("endpoint", sub.Endpoint))
		p.pool.Submit(func() {
			p.deliver(id, sub, message, requestHook, responseHook)
		})
	case deliveryUnreachable:
		p.evict(id, sub, "subscriber unreachable", zap.Error(err))
	default:
		p.logger.Warn(logging.ComponentPublish, "delivery failed with non-terminal error", zap.Error(err))
	}
}

func (p *PublishPipeline) evict(id string, sub Subscriber, reason string, extra zap.Field) {
	p.store.Remove(id, sub)
	p.logger.Warn(logging.ComponentPublish, "evicting subscriber: "+reason,
		zap.String("topic", id), zap.String("endpoint", sub.Endpoint), extra)
}
