package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingTable(t *testing.T) {
	t.Run("Resolve", func(t *testing.T) {
		p := newPendingTable(time.Second)
		ch := p.insert(1)

		assert.True(t, p.resolve(1, &Message{ID: 1, Type: "A"}))
		res := <-ch
		assert.NoError(t, res.err)
		assert.Equal(t, "A", res.msg.Type)
		assert.Equal(t, 0, p.len())
	})

	t.Run("ResolveUnknown", func(t *testing.T) {
		p := newPendingTable(time.Second)
		assert.False(t, p.resolve(42, &Message{ID: 42}))
	})

	t.Run("ExpiresAfterTimeout", func(t *testing.T) {
		p := newPendingTable(20 * time.Millisecond)
		ch := p.insert(1)

		res := <-ch
		assert.ErrorIs(t, res.err, ErrProtocolTimeout)
		assert.Equal(t, 0, p.len())
		assert.False(t, p.resolve(1, &Message{ID: 1}), "late response must not resolve")
	})

	t.Run("ResolveOnlyOnce", func(t *testing.T) {
		p := newPendingTable(time.Second)
		ch := p.insert(7)

		assert.True(t, p.resolve(7, &Message{ID: 7}))
		assert.False(t, p.expire(7, ErrProtocolTimeout))
		assert.NoError(t, (<-ch).err)
	})

	t.Run("FailAll", func(t *testing.T) {
		p := newPendingTable(time.Second)
		a := p.insert(1)
		b := p.insert(2)

		p.failAll(ErrConnectionClosed)
		assert.ErrorIs(t, (<-a).err, ErrConnectionClosed)
		assert.ErrorIs(t, (<-b).err, ErrConnectionClosed)

		c := p.insert(3)
		assert.True(t, errors.Is((<-c).err, ErrConnectionClosed))
		assert.Equal(t, 0, p.len())
	})
}
