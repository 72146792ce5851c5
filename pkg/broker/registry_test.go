package broker

import (
	"testing"

	"github.com/dbros-oss/lss-broker/pkg/document"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/storage"
)

func newTestRegistry(t *testing.T) *HandlerRegistry {
	t.Helper()
	logger, err := logging.New(false)
	if err != nil {
		t.Fatal(err)
	}
	store := NewSubscriptionStore(storage.NewMemKV(), logger)
	return NewHandlerRegistry(store, logger)
}

func TestRegistryLookupMissing(t *testing.T) {
	r := newTestRegistry(t)
	if _, ok := r.Lookup("/nope"); ok {
		t.Fatal("expected no handler for unregistered path")
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := newTestRegistry(t)
	r.RegisterHandler("/echo", func(req, resp *document.Document) bool { return true })

	fn, ok := r.Lookup("/echo")
	if !ok {
		t.Fatal("expected handler to be registered")
	}
	if !fn(document.Empty(), document.Empty()) {
		t.Fatal("expected handler to report success")
	}
}

func TestRegistryOverwriteWarnsButSucceeds(t *testing.T) {
	r := newTestRegistry(t)
	r.RegisterHandler("/echo", func(req, resp *document.Document) bool { return true })
	r.RegisterHandler("/echo", func(req, resp *document.Document) bool { return false })

	fn, _ := r.Lookup("/echo")
	if fn(document.Empty(), document.Empty()) {
		t.Fatal("expected the second registration to have replaced the first")
	}
}
