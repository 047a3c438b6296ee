package database

import (
	"context"
	"reflect"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryStore keeps documents as bson in process memory. It backs the test
// suites and local runs without a MongoDB replica set.
type MemoryStore struct {
	mu          sync.Mutex
	clock       func() time.Time
	collections map[string]*memoryCollection
	nextSubID   int
}

type memoryCollection struct {
	order       []bson.ObjectID
	docs        map[bson.ObjectID]bson.Raw
	subscribers map[int]chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(func() time.Time { return time.Now().UTC() })
}

func NewMemoryStoreWithClock(clock func() time.Time) *MemoryStore {
	return &MemoryStore{
		clock:       clock,
		collections: map[string]*memoryCollection{},
	}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{
			docs:        map[bson.ObjectID]bson.Raw{},
			subscribers: map[int]chan struct{}{},
		}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc any) (bson.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return bson.ObjectID{}, err
	}

	fields, err := documentFields(doc)
	if err != nil {
		return bson.ObjectID{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := bson.NewObjectID()
	now := s.clock()
	fields["_id"] = id
	fields["created_at"] = now
	fields["updated_at"] = now

	raw, err := bson.Marshal(fields)
	if err != nil {
		return bson.ObjectID{}, err
	}

	c := s.collection(collection)
	c.docs[id] = raw
	c.order = append(c.order, id)
	c.notify()

	return id, nil
}

func (s *MemoryStore) FindOne(ctx context.Context, collection string, id bson.ObjectID) (bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.collection(collection).docs[id]
	if !ok {
		return nil, ErrNotFound
	}

	return raw, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter Filter) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findLocked(collection, filter)
}

func (s *MemoryStore) findLocked(collection string, filter Filter) ([]bson.Raw, error) {
	normalized, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	c := s.collection(collection)
	docs := []bson.Raw{}
	for _, id := range c.order {
		raw := c.docs[id]

		doc := bson.M{}
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}

		if matches(doc, normalized) {
			docs = append(docs, raw)
		}
	}

	return docs, nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	docs, err := s.Find(ctx, collection, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (s *MemoryStore) Update(ctx context.Context, collection string, id bson.ObjectID, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	raw, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}

	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}

	now := s.clock()
	for key, value := range fields {
		if _, ok := value.(serverTimestamp); ok {
			doc[key] = now
			continue
		}
		doc[key] = value
	}

	updated, err := bson.Marshal(doc)
	if err != nil {
		return err
	}

	c.docs[id] = updated
	c.notify()

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection string, id bson.ObjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}

	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.notify()

	return nil
}

// Subscribe coalesces bursts of changes: a slow reader skips intermediate sets
// but always receives the latest one.
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, filter Filter) (*Subscription, error) {
	if _, err := normalizeFilter(filter); err != nil {
		return nil, err
	}

	sub, ctx, out := newSubscription(ctx)

	changed := make(chan struct{}, 1)
	changed <- struct{}{}

	s.mu.Lock()
	subID := s.nextSubID
	s.nextSubID++
	s.collection(collection).subscribers[subID] = changed
	s.mu.Unlock()

	go func() {
		defer close(sub.done)
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.collection(collection).subscribers, subID)
			s.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}

			s.mu.Lock()
			docs, err := s.findLocked(collection, filter)
			s.mu.Unlock()
			if err != nil {
				return
			}

			select {
			case out <- docs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub, nil
}

func (c *memoryCollection) notify() {
	for _, changed := range c.subscribers {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
}

// normalizeFilter round-trips the filter through bson so named string types
// and other driver-encodable values compare equal to decoded documents.
func normalizeFilter(filter Filter) (bson.M, error) {
	normalized := bson.M{}
	if len(filter) == 0 {
		return normalized, nil
	}

	raw, err := bson.Marshal(bson.M(filter))
	if err != nil {
		return nil, err
	}

	if err := bson.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}

	return normalized, nil
}

func matches(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		got, exists := doc[key]

		if want == nil {
			if exists && got != nil {
				return false
			}
			continue
		}

		if !exists || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
