package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvertiseHostExplicit(t *testing.T) {
	host, port, err := AdvertiseHost("10.1.2.3:9090")
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", host)
	assert.Equal(t, 9090, port)

	host, port, err = AdvertiseHost("status.local:8080")
	require.NoError(t, err)
	assert.Equal(t, "status.local", host)
	assert.Equal(t, 8080, port)
}

func TestAdvertiseHostInvalid(t *testing.T) {
	_, _, err := AdvertiseHost("no-port")
	assert.Error(t, err)
}
