package account

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockerSerializesSameUser(t *testing.T) {
	l := NewLocker()
	id := uuid.New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(id)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.size())
}

func TestLockerPairsDoNotDeadlock(t *testing.T) {
	l := NewLocker()
	a, b := uuid.New(), uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := l.Lock(a, b)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := l.Lock(b, a)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, l.size())
}

func TestLockerDuplicateIDs(t *testing.T) {
	l := NewLocker()
	id := uuid.New()

	unlock := l.Lock(id, id)
	assert.Equal(t, 1, l.size())
	unlock()
	assert.Equal(t, 0, l.size())
}
