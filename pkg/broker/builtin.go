package broker

import (
	"github.com/dbros-oss/lss-broker/pkg/document"
)

// subscribeRequest is the body handleSubscribe and handleUnsubscribe both
// accept: {id, endpoint, path}, all required (spec.md §4.6).
type subscribeRequest struct {
	ID       string
	Endpoint string
	Path     string
}

func parseSubscribeRequest(req *document.Document) (subscribeRequest, bool) {
	sr := subscribeRequest{
		ID:       req.String("id"),
		Endpoint: req.String("endpoint"),
		Path:     req.String("path"),
	}
	if sr.ID == "" || sr.Endpoint == "" || sr.Path == "" {
		return subscribeRequest{}, false
	}
	return sr, true
}

// handleSubscribe implements spec.md §4.6's /subscribe contract: the topic
// must already exist (some service has called RegisterPublishHandler), the
// subscriber is added, and then — outside the subscription lock — the
// subscribe hook (if any) populates the reply and, independently, the
// request/response hooks (if either is set) prime the new subscriber with
// an immediate delivery. Both are intentionally preserved even though they
// can fire together (spec.md §9 open question (a)).
func (b *Broker) handleSubscribe(req, resp *document.Document) bool {
	sr, ok := parseSubscribeRequest(req)
	if !ok {
		return false
	}
	if !b.store.TopicExists(sr.ID) {
		return false
	}

	sub := Subscriber{Endpoint: sr.Endpoint, Path: sr.Path}
	b.store.Add(sr.ID, sub)

	hooks := b.store.HooksOf(sr.ID)
	if hooks.Subscribe != nil {
		if !hooks.Subscribe(nil, resp) {
			return false
		}
	}
	if hooks.Request != nil || hooks.Response != nil {
		b.publish.pool.Submit(func() {
			b.publish.deliver(sr.ID, sub, nil, hooks.Request, hooks.Response)
		})
	}
	return true
}

// handleUnsubscribe implements spec.md §4.6's /unsubscribe contract: remove
// the matching subscriber with no hook invocation. The topic need not
// already exist.
func (b *Broker) handleUnsubscribe(req, resp *document.Document) bool {
	sr, ok := parseSubscribeRequest(req)
	if !ok {
		return false
	}
	b.store.Remove(sr.ID, Subscriber{Endpoint: sr.Endpoint, Path: sr.Path})
	return true
}
