package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var ErrNotFound = errors.New("database: document not found")

// Filter matches documents by top-level field equality. A nil value matches a
// missing or null field.
type Filter map[string]any

// Fields is a partial document applied with $set semantics.
type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp as a Fields value is replaced by the store's write time.
var ServerTimestamp = serverTimestamp{}

// Store is the persistence capability the CRM core depends on.
//
// Insert stamps created_at and updated_at with the store's write time and
// returns the generated id. Subscribe delivers the full matching set once up
// front and again after every change to the collection.
type Store interface {
	Insert(ctx context.Context, collection string, doc any) (bson.ObjectID, error)
	FindOne(ctx context.Context, collection string, id bson.ObjectID) (bson.Raw, error)
	Find(ctx context.Context, collection string, filter Filter) ([]bson.Raw, error)
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Update(ctx context.Context, collection string, id bson.ObjectID, fields Fields) error
	Delete(ctx context.Context, collection string, id bson.ObjectID) error
	Subscribe(ctx context.Context, collection string, filter Filter) (*Subscription, error)
}

type Subscription struct {
	C      <-chan []bson.Raw
	cancel context.CancelFunc
	done   chan struct{}
}

func newSubscription(ctx context.Context) (*Subscription, context.Context, chan []bson.Raw) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []bson.Raw)
	return &Subscription{C: out, cancel: cancel, done: make(chan struct{})}, ctx, out
}

// Close stops delivery and waits for the listener to exit. C is closed
// afterwards.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the listener has exited, either through Close, through
// the parent context or because the underlying stream failed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func documentFields(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	delete(fields, "_id")
	delete(fields, "created_at")
	delete(fields, "updated_at")

	return fields, nil
}
