package broker

import (
	"encoding/json"
	"sync"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/storage"
)

const (
	persistTable = "aace.localSkillService"
	persistKey   = "subscriptions"
)

type topic struct {
	subscribers SubscriberSet
	hooks       Hooks
}

// SubscriptionStore maps topic id to its SubscriberSet and hooks, and
// persists the flattened subscriber list through a storage.KV table
// (spec.md §3, §4.2). publishHandlers, subscriptions and SubscriberSet
// contents all share one mutex per spec.md §5.
type SubscriptionStore struct {
	mu     sync.Mutex
	topics map[string]*topic
	kv     storage.KV
	logger *logging.Logger
}

// NewSubscriptionStore returns an empty store backed by kv.
func NewSubscriptionStore(kv storage.KV, logger *logging.Logger) *SubscriptionStore {
	return &SubscriptionStore{
		topics: make(map[string]*topic),
		kv:     kv,
		logger: logger,
	}
}

// EnsureTopic idempotently creates topic id if absent.
func (s *SubscriptionStore) EnsureTopic(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureTopicLocked(id)
}

func (s *SubscriptionStore) ensureTopicLocked(id string) *topic {
	t, ok := s.topics[id]
	if !ok {
		t = &topic{}
		s.topics[id] = t
	}
	return t
}

// TopicExists reports whether id has been registered, via registerPublishHandler
// or by a prior load/subscribe.
func (s *SubscriptionStore) TopicExists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.topics[id]
	return ok
}

// Add ensures the topic exists then adds sub to it, persisting on success.
// Returns false if sub was already present.
func (s *SubscriptionStore) Add(id string, sub Subscriber) bool {
	s.mu.Lock()
	t := s.ensureTopicLocked(id)
	added := t.subscribers.Add(sub)
	snapshot := s.snapshotAllLocked()
	s.mu.Unlock()

	if added {
		s.persist(snapshot)
	}
	return added
}

// Remove deletes sub from topic id, persisting on success. Returns false if
// sub was not a member (including when id is unknown).
func (s *SubscriptionStore) Remove(id string, sub Subscriber) bool {
	s.mu.Lock()
	t, ok := s.topics[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	removed := t.subscribers.Remove(sub)
	snapshot := s.snapshotAllLocked()
	s.mu.Unlock()

	if removed {
		s.persist(snapshot)
	}
	return removed
}

// SubscribersOf returns a stable snapshot of topic id's subscribers. An
// unknown topic yields an empty slice.
func (s *SubscriptionStore) SubscribersOf(id string) []Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return nil
	}
	return t.subscribers.Snapshot()
}

// HooksOf returns a copy of topic id's registered hooks. Zero value if id
// is unknown.
func (s *SubscriptionStore) HooksOf(id string) Hooks {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return Hooks{}
	}
	return t.hooks
}

// RegisterHooks overwrites any of the non-nil fields of h on topic id,
// creating the topic if absent (spec.md §4.3).
func (s *SubscriptionStore) RegisterHooks(id string, h Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.ensureTopicLocked(id)
	if h.Subscribe != nil {
		t.hooks.Subscribe = h.Subscribe
	}
	if h.Request != nil {
		t.hooks.Request = h.Request
	}
	if h.Response != nil {
		t.hooks.Response = h.Response
	}
}

type persistedEntry struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
	Path     string `json:"path"`
}

func (s *SubscriptionStore) snapshotAllLocked() []persistedEntry {
	var out []persistedEntry
	for id, t := range s.topics {
		for _, sub := range t.subscribers.Snapshot() {
			out = append(out, persistedEntry{ID: id, Endpoint: sub.Endpoint, Path: sub.Path})
		}
	}
	return out
}

// persist writes entries as a flat JSON array under persistTable/persistKey.
// Failure is logged; in-memory state remains authoritative (spec.md §4.2).
func (s *SubscriptionStore) persist(entries []persistedEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		s.logger.Error(logging.ComponentSubscribe, "failed to marshal subscriptions for persistence", zap.Error(err))
		return
	}
	if err := s.kv.Put(persistTable, persistKey, string(raw)); err != nil {
		s.logger.Error(logging.ComponentSubscribe, "failed to persist subscriptions", zap.Error(err))
	}
}

// Load reads the persisted subscriber array and recreates topics and
// subscribers. Missing, empty or unparseable state is treated as empty,
// logged but not an error (spec.md §4.2, §6).
func (s *SubscriptionStore) Load() {
	value, ok, err := s.kv.Get(persistTable, persistKey)
	if err != nil {
		s.logger.Warn(logging.ComponentSubscribe, "failed to read persisted subscriptions", zap.Error(err))
		return
	}
	if !ok || value == "" {
		return
	}
	if !gjson.Valid(value) {
		s.logger.Warn(logging.ComponentSubscribe, "persisted subscriptions are not valid JSON; starting empty")
		return
	}

	var entries []persistedEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		s.logger.Warn(logging.ComponentSubscribe, "failed to parse persisted subscriptions; starting empty", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" || e.Endpoint == "" || e.Path == "" {
			s.logger.Warn(logging.ComponentSubscribe, "skipping persisted entry with missing fields")
			continue
		}
		t := s.ensureTopicLocked(e.ID)
		t.subscribers.Add(Subscriber{Endpoint: e.Endpoint, Path: e.Path})
	}
}

