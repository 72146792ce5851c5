package broker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbros-oss/lss-broker/pkg/document"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/storage"
)

func newTestStore(t *testing.T) (*SubscriptionStore, storage.KV) {
	t.Helper()
	logger, err := logging.New(false)
	require.NoError(t, err)
	kv := storage.NewMemKV()
	return NewSubscriptionStore(kv, logger), kv
}

func TestStoreAddPersistsRoundTrip(t *testing.T) {
	store, kv := newTestStore(t)
	sub := Subscriber{Endpoint: "/tmp/a.sock", Path: "/cb"}

	require.True(t, store.Add("t", sub))
	require.False(t, store.Add("t", sub), "duplicate add should fail")

	fresh := NewSubscriptionStore(kv, store.logger)
	fresh.Load()
	require.Equal(t, []Subscriber{sub}, fresh.SubscribersOf("t"))
}

func TestStoreRemoveUnknownTopic(t *testing.T) {
	store, _ := newTestStore(t)
	require.False(t, store.Remove("nope", Subscriber{Endpoint: "/tmp/a.sock", Path: "/cb"}))
}

func TestStoreLoadTolerantOfGarbage(t *testing.T) {
	logger, err := logging.New(false)
	require.NoError(t, err)
	kv := storage.NewMemKV()
	require.NoError(t, kv.Put(persistTable, persistKey, "not json"))

	store := NewSubscriptionStore(kv, logger)
	store.Load()
	require.Empty(t, store.SubscribersOf("t"))
}

func TestStoreLoadCreatesTopicBeforeRegisterPublishHandler(t *testing.T) {
	logger, err := logging.New(false)
	require.NoError(t, err)
	kv := storage.NewMemKV()
	require.NoError(t, kv.Put(persistTable, persistKey, `[{"id":"t","endpoint":"/tmp/a.sock","path":"/cb"}]`))

	store := NewSubscriptionStore(kv, logger)
	store.Load()
	require.True(t, store.TopicExists("t"))

	store.RegisterHooks("t", Hooks{})
	require.Equal(t, []Subscriber{{Endpoint: "/tmp/a.sock", Path: "/cb"}}, store.SubscribersOf("t"))
}

func TestStoreRegisterHooksOverwritesLastWins(t *testing.T) {
	store, _ := newTestStore(t)

	calledA, calledB := false, false
	store.RegisterHooks("t", Hooks{Subscribe: func(req, resp *document.Document) bool { calledA = true; return true }})
	store.RegisterHooks("t", Hooks{Subscribe: func(req, resp *document.Document) bool { calledB = true; return true }})

	hooks := store.HooksOf("t")
	hooks.Subscribe(nil, nil)
	require.False(t, calledA)
	require.True(t, calledB)
}
