package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("user0"), PrefixEnd([]byte("user/")))
	assert.Equal(t, []byte{0x01}, PrefixEnd([]byte{0x00, 0xff}))
	assert.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
	assert.Nil(t, PrefixEnd(nil))
}
