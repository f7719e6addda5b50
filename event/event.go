// Package event provides a small typed observer list. Handlers are invoked in
// subscription order on the publishing goroutine.
package event

import "sync"

// Token identifies a subscription so it can be removed later.
type Token uint64

type subscription[T any] struct {
	token   Token
	handler func(T)
}

// Event is a multi-subscriber notification carrying a value of type T.
// The zero value is ready to use.
type Event[T any] struct {
	mu       sync.Mutex
	next     Token
	handlers []subscription[T]
}

// Subscribe registers handler and returns the token that removes it.
func (e *Event[T]) Subscribe(handler func(T)) Token {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.next++
	e.handlers = append(e.handlers, subscription[T]{token: e.next, handler: handler})
	return e.next
}

// Unsubscribe removes the handler registered under token. Unknown tokens are
// ignored.
func (e *Event[T]) Unsubscribe(token Token) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.handlers {
		if s.token == token {
			e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
			return
		}
	}
}

// Publish invokes every handler registered at the time of the call. Handlers
// may subscribe or unsubscribe while being invoked.
func (e *Event[T]) Publish(value T) {
	e.mu.Lock()
	handlers := e.handlers
	e.mu.Unlock()

	for _, s := range handlers {
		s.handler(value)
	}
}

// Len returns the number of registered handlers.
func (e *Event[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}
