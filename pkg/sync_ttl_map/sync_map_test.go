package sync_ttl_map

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreLoad(t *testing.T) {
	m := New(time.Minute)
	m.Store("k", "v")
	assert.Equal(t, "v", m.Load("k"))
	assert.Nil(t, m.Load("missing"))
}

func TestExpiredEntriesAreNotReturned(t *testing.T) {
	m := New(20 * time.Millisecond)
	m.Store("k", "v")
	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, m.Load("k"))
}

func TestDelete(t *testing.T) {
	m := New(time.Minute)
	m.Store("k", 1)
	m.Delete("k")
	assert.Nil(t, m.Load("k"))
}
