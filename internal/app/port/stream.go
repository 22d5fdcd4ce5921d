package port

import (
	"context"

	"stream_insight/internal/domain/entity"
)

// StreamSubscription is a live vendor subscription.
type StreamSubscription interface {
	ID() string
	Unsubscribe() error
}

// StreamClient is the vendor push-subscription client. onData receives raw payload bytes
// in delivery order; onError receives transport failures of that subscription.
type StreamClient interface {
	Subscribe(ctx context.Context, topic entity.TopicDescriptor, onData func([]byte), onError func(error)) (StreamSubscription, error)
	Close()
}

// StreamDialer constructs the push transport and the vendor client on top of it.
type StreamDialer interface {
	Dial(ctx context.Context) (StreamClient, error)
}
