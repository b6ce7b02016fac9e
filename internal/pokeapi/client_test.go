package pokeapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/f3rmion/pokedex/internal/pokeapi/pokeapitest"
	"github.com/f3rmion/pokedex/internal/pokedex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, srv *pokeapitest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewClient(srv.BaseURL(), opts...)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)

	c = NewClient("https://example.test/api/v2/", WithTimeout(0), WithMaxConcurrency(3))
	assert.Equal(t, "https://example.test/api/v2", c.BaseURL())
	assert.Zero(t, c.httpClient.Timeout)
	assert.Equal(t, 3, c.maxConcurrency)
}

func TestList(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	refs, err := newTestClient(t, srv).List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "bulbasaur", refs[0].Name)
	assert.Contains(t, refs[0].URL, "/pokemon/1/")
}

func TestLookup(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	entry, err := newTestClient(t, srv).Lookup(context.Background(), "  PIKACHU ")
	require.NoError(t, err)
	assert.Equal(t, 25, entry.ID)
	assert.Equal(t, "pikachu", entry.Name)
	assert.Equal(t, 4, entry.HeightDecimeters)
	assert.Equal(t, 60, entry.WeightHectograms)
	assert.Equal(t, []string{"electric"}, entry.Types)
	assert.Equal(t, srv.URL+"/sprites/25.png", entry.SpriteURL)
}

func TestLookupMissingSprite(t *testing.T) {
	srv := pokeapitest.NewServer([]pokedex.Entry{{ID: 999, Name: "missingno"}})
	defer srv.Close()

	entry, err := newTestClient(t, srv).Lookup(context.Background(), "missingno")
	require.NoError(t, err)
	assert.Empty(t, entry.SpriteURL)
	assert.False(t, entry.HasSprite())
}

func TestLookupNotFound(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	_, err := newTestClient(t, srv).Lookup(context.Background(), "notapokemon123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsKind(err, KindNotFound))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestLookupServerErrorIsNotFound(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()
	srv.FailWith("pikachu", http.StatusInternalServerError)

	_, err := newTestClient(t, srv).Lookup(context.Background(), "pikachu")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupEmptyName(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	_, err := newTestClient(t, srv).Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, srv.Requests())
}

func TestTransportError(t *testing.T) {
	srv := pokeapitest.NewServer(nil)
	base := srv.BaseURL()
	srv.Close()

	_, err := NewClient(base).Lookup(context.Background(), "pikachu")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransport))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "not a number"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Lookup(context.Background(), "pikachu")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDecode))
}

func TestIncompleteEntryIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 0, "name": ""}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Get(context.Background(), srv.URL+"/pokemon/1")
	assert.True(t, IsKind(err, KindDecode))
}

func TestFetchBatch(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	entries, err := newTestClient(t, srv).FetchBatch(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Order follows the list, not completion order.
	ids := []int{entries[0].ID, entries[1].ID, entries[2].ID, entries[3].ID}
	assert.Equal(t, []int{1, 4, 7, 25}, ids)

	// One list request plus one per entry.
	assert.Equal(t, 5, srv.Requests())
}

func TestFetchBatchWithConcurrencyCap(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	entries, err := newTestClient(t, srv, WithMaxConcurrency(1)).FetchBatch(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFetchBatchAllOrNothing(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()
	srv.FailWith("squirtle", http.StatusServiceUnavailable)

	client := newTestClient(t, srv)
	entries, err := client.FetchBatch(context.Background(), 20)
	require.Error(t, err)
	assert.Nil(t, entries)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "squirtle")

	client.httpClient.CloseIdleConnections()
}

func TestFetchBatchListFailure(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()
	srv.FailWith("list", http.StatusBadGateway)

	_, err := newTestClient(t, srv).FetchBatch(context.Background(), 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing entries")
	assert.Equal(t, 1, srv.Requests())
}

func TestLookupCancelled(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	release := srv.Hold("pikachu")
	defer srv.Close()
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := newTestClient(t, srv).Lookup(ctx, "pikachu")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("lookup did not return after cancel")
	}
}

func TestSprite(t *testing.T) {
	srv := pokeapitest.NewServer(pokeapitest.Starters())
	defer srv.Close()

	img, err := newTestClient(t, srv).Sprite(context.Background(), srv.URL+"/sprites/25.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = newTestClient(t, srv).Sprite(context.Background(), srv.URL+"/sprites/nope.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
