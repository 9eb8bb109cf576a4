package pulp

import (
	"context"
	"time"
)

// Exchange summarises one request that reached the transport.
type Exchange struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	At       time.Time
	// Err is the transport or request error, nil on success.
	Err error
}

// Failed reports whether the exchange ended in an error.
func (e Exchange) Failed() bool { return e.Err != nil }

// Observer is told about every exchange a session performs.
type Observer interface {
	Observe(ctx context.Context, ex Exchange)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ex Exchange)

func (f ObserverFunc) Observe(ctx context.Context, ex Exchange) { f(ctx, ex) }
