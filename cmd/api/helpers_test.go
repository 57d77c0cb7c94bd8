package main

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvarov/backoffice/internal/store"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2025-06-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got.UTC())

	got, err = parseDate("2025-06-01T10:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.UTC().Hour())

	got, err = parseDate("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDate("01/06/2025")
	assert.Error(t, err)
}

func TestResolveOwner(t *testing.T) {
	owner, ok := resolveOwner(7, "")
	require.True(t, ok)
	assert.Equal(t, store.OwnerCustomer, owner.Kind)
	assert.Equal(t, "7", owner.Key)

	owner, ok = resolveOwner(0, "tok-abc")
	require.True(t, ok)
	assert.Equal(t, store.OwnerSession, owner.Kind)
	assert.Equal(t, "tok-abc", owner.Key)

	// Customer identity outranks the session token.
	owner, ok = resolveOwner(7, "tok-abc")
	require.True(t, ok)
	assert.Equal(t, store.OwnerCustomer, owner.Kind)

	_, ok = resolveOwner(0, "")
	assert.False(t, ok)

	_, ok = resolveOwner(-3, "")
	assert.False(t, ok)
}

func TestOwnerFromQueryHeaderToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("X-Session-Token", "tok-h")

	owner, ok := ownerFromQuery(req)
	require.True(t, ok)
	assert.Equal(t, store.OwnerSession, owner.Kind)
	assert.Equal(t, "tok-h", owner.Key)
}

func TestQueryID(t *testing.T) {
	req := httptest.NewRequest("GET", "/orders?id=12", nil)
	id, ok := queryID(req)
	require.True(t, ok)
	assert.Equal(t, int64(12), id)

	for _, raw := range []string{"/orders", "/orders?id=0", "/orders?id=-4", "/orders?id=abc"} {
		req := httptest.NewRequest("GET", raw, nil)
		_, ok := queryID(req)
		assert.False(t, ok, raw)
	}
}
