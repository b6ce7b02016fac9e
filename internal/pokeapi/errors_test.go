package pokeapi

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := notFound("https://pokeapi.co/api/v2/pokemon/x", 404)
	assert.Equal(t, "NOT_FOUND: https://pokeapi.co/api/v2/pokemon/x returned 404", err.Error())

	err = transport("https://pokeapi.co", errors.New("connection refused"))
	assert.Equal(t, "TRANSPORT: https://pokeapi.co: connection refused", err.Error())
}

func TestErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("fetching pikachu: %w", notFound("u", 500))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.True(t, IsKind(wrapped, KindNotFound))

	assert.NotErrorIs(t, decode("u", errors.New("bad json")), ErrNotFound)
	assert.False(t, IsKind(errors.New("plain"), KindDecode))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, transport("u", cause), cause)
}
