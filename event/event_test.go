package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInSubscriptionOrder(t *testing.T) {
	var e Event[string]
	var got []string

	e.Subscribe(func(s string) { got = append(got, "a:"+s) })
	e.Subscribe(func(s string) { got = append(got, "b:"+s) })
	e.Subscribe(func(s string) { got = append(got, "c:"+s) })

	e.Publish("x")
	assert.Equal(t, []string{"a:x", "b:x", "c:x"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var e Event[int]
	calls := map[string]int{}

	first := e.Subscribe(func(int) { calls["first"]++ })
	e.Subscribe(func(int) { calls["second"]++ })

	e.Publish(1)
	e.Unsubscribe(first)
	e.Publish(2)
	e.Unsubscribe(Token(999))

	assert.Equal(t, 1, calls["first"])
	assert.Equal(t, 2, calls["second"])
	assert.Equal(t, 1, e.Len())
}

func TestHandlerMayUnsubscribeDuringPublish(t *testing.T) {
	var e Event[int]
	var token Token
	count := 0

	token = e.Subscribe(func(int) {
		count++
		e.Unsubscribe(token)
	})
	after := 0
	e.Subscribe(func(int) { after++ })

	e.Publish(1)
	e.Publish(2)

	assert.Equal(t, 1, count)
	assert.Equal(t, 2, after)
}

func TestConcurrentPublish(t *testing.T) {
	var e Event[int]
	var mu sync.Mutex
	total := 0
	e.Subscribe(func(v int) {
		mu.Lock()
		total += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Publish(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, total)
}
