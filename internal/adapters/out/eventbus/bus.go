// Package eventbus fans shipment status changes out to in-process subscribers.
package eventbus

import (
	"context"
	"errors"
	"sync"

	"cmr/internal/core/domain/model/shipment"

	"go.uber.org/zap"
)

const defaultBufferSize = 100

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Subscriber receives status changes on its own goroutine.
type Subscriber func(shipment.StatusChanged)

// Bus is a non-blocking publish/subscribe bus implementing ports.EventPublisher.
// Every subscriber has a buffered channel; when it is full the event is dropped
// for that subscriber and a warning is logged.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan shipment.StatusChanged
	bufferSize  int
	closed      bool
	wg          sync.WaitGroup
	logger      *zap.Logger
}

func NewBus(bufferSize int, logger *zap.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subscribers: make(map[string]chan shipment.StatusChanged),
		bufferSize:  bufferSize,
		logger:      logger.With(zap.String("component", "event_bus")),
	}
}

// Subscribe registers fn under name and returns an unsubscribe function.
// Registering a second subscriber under the same name replaces the first.
// After Close nothing is registered and the returned function does nothing.
func (b *Bus) Subscribe(name string, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Warn("subscribe on closed bus ignored", zap.String("subscriber", name))
		return func() {}
	}

	if old, ok := b.subscribers[name]; ok {
		close(old)
	}

	ch := make(chan shipment.StatusChanged, b.bufferSize)
	b.subscribers[name] = ch

	b.wg.Add(1)
	go b.deliver(name, ch, fn)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if cur, ok := b.subscribers[name]; ok && cur == ch {
			delete(b.subscribers, name)
			close(ch)
		}
	}
}

func (b *Bus) deliver(name string, ch <-chan shipment.StatusChanged, fn Subscriber) {
	defer b.wg.Done()

	for event := range ch {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("subscriber panicked",
						zap.String("subscriber", name),
						zap.String("shipment_id", event.ShipmentID.String()),
						zap.Any("panic", r),
					)
				}
			}()
			fn(event)
		}()
	}
}

// Publish hands the event to every subscriber without blocking.
func (b *Bus) Publish(_ context.Context, event shipment.StatusChanged) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	for name, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber buffer full, event dropped",
				zap.String("subscriber", name),
				zap.String("shipment_id", event.ShipmentID.String()),
			)
		}
	}
	return nil
}

// Close stops accepting events and waits until subscribers drain their buffers.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for name, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, name)
	}
	b.mu.Unlock()

	b.wg.Wait()
}
