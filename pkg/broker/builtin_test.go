package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dbros-oss/lss-broker/pkg/document"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/storage"
	"github.com/dbros-oss/lss-broker/pkg/worker"
)

func newTestBroker(t *testing.T, fd *fakeDeliverer) *Broker {
	t.Helper()
	logger, err := logging.New(false)
	require.NoError(t, err)
	kv := storage.NewMemKV()

	b := &Broker{logger: logger, kv: kv}
	b.store = NewSubscriptionStore(kv, logger)
	b.registry = NewHandlerRegistry(b.store, logger)
	b.handlerPool = worker.NewPool(2, 16, logger, logging.ComponentDispatch)
	b.publishPool = worker.NewPool(2, 16, logger, logging.ComponentPublish)
	b.publish = NewPublishPipeline(b.store, b.publishPool, fd, logger)
	b.dispatcher = NewRequestDispatcher(b.registry, b.handlerPool, logger)
	b.registry.RegisterHandler("/subscribe", b.handleSubscribe)
	b.registry.RegisterHandler("/unsubscribe", b.handleUnsubscribe)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = b.handlerPool.Stop(ctx)
		_ = b.publishPool.Stop(ctx)
	})
	return b
}

func TestSubscribeOnUnregisteredTopicFails(t *testing.T) {
	b := newTestBroker(t, &fakeDeliverer{})
	req := mustDoc(t, `{"id":"t","endpoint":"/tmp/a.sock","path":"/cb"}`)
	resp := document.Empty()
	require.False(t, b.handleSubscribe(req, resp))
	require.Empty(t, b.store.SubscribersOf("t"))
}

func TestSubscribePrimesNewSubscriber(t *testing.T) {
	fd := &fakeDeliverer{}
	b := newTestBroker(t, fd)
	b.store.EnsureTopic("t")
	b.store.RegisterHooks("t", Hooks{Request: func(doc *document.Document) bool {
		return doc.Set("hello", "world") == nil
	}})

	req := mustDoc(t, `{"id":"t","endpoint":"/tmp/a.sock","path":"/cb"}`)
	resp := document.Empty()
	require.True(t, b.handleSubscribe(req, resp))

	waitFor(t, time.Second, func() bool { return fd.callCount() == 1 })
	call := fd.lastCall()
	require.JSONEq(t, `{"hello":"world"}`, string(call.body))
}

func TestSubscribeThenPublishDeliversOnce(t *testing.T) {
	fd := &fakeDeliverer{}
	b := newTestBroker(t, fd)
	b.store.EnsureTopic("t")

	req := mustDoc(t, `{"id":"t","endpoint":"/tmp/a.sock","path":"/cb"}`)
	require.True(t, b.handleSubscribe(req, document.Empty()))

	require.True(t, b.PublishMessage("t", mustDoc(t, `{"n":42}`)))
	waitFor(t, time.Second, func() bool { return fd.callCount() == 1 })
	call := fd.lastCall()
	require.Equal(t, "/tmp/a.sock", call.socketPath)
	require.Equal(t, "/cb", call.path)
	require.JSONEq(t, `{"n":42}`, string(call.body))
}

func TestPublishAfterEvictionDeliversZeroTimes(t *testing.T) {
	fd := &fakeDeliverer{responses: []func(int) (int, []byte, error){
		func(int) (int, []byte, error) { return 500, nil, nil },
	}}
	b := newTestBroker(t, fd)
	b.store.EnsureTopic("t")
	req := mustDoc(t, `{"id":"t","endpoint":"/tmp/a.sock","path":"/cb"}`)
	require.True(t, b.handleSubscribe(req, document.Empty()))

	require.True(t, b.PublishMessage("t", mustDoc(t, `{}`)))
	waitFor(t, time.Second, func() bool { return len(b.store.SubscribersOf("t")) == 0 })

	require.True(t, b.PublishMessage("t", mustDoc(t, `{}`)))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, fd.callCount(), "no delivery should reach an evicted subscriber")
}

func TestUnsubscribeUnknownSubscriberIsNoop(t *testing.T) {
	b := newTestBroker(t, &fakeDeliverer{})
	req := mustDoc(t, `{"id":"t","endpoint":"/tmp/a.sock","path":"/cb"}`)
	require.True(t, b.handleUnsubscribe(req, document.Empty()))
	require.Empty(t, b.store.SubscribersOf("t"))
}
