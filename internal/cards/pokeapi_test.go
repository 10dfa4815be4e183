package cards

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

func newPokeServer(t *testing.T, listStatus int, listHits *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon", func(w http.ResponseWriter, r *http.Request) {
		listHits.Add(1)
		if listStatus != http.StatusOK {
			w.WriteHeader(listStatus)
			return
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("Expected limit=3, got %q", got)
		}
		fmt.Fprintf(w, `{"results":[
			{"name":"bulbasaur","url":"%[1]s/pokemon/1/"},
			{"name":"ivysaur","url":"%[1]s/pokemon/2/"},
			{"name":"venusaur","url":"%[1]s/pokemon/3/"}]}`, srv.URL)
	})
	mux.HandleFunc("/pokemon/1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":1,"sprites":{
			"front_default":"front-1.png",
			"other":{"official-artwork":{"front_default":"art-1.png"},"dream_world":{"front_default":null}}}}`)
	})
	mux.HandleFunc("/pokemon/2/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/pokemon/3/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":3,"sprites":{"front_default":"front-3.png","other":{}}}`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPokeProvider(url string) *PokeAPIProvider {
	p := NewPokeAPIProvider(url, 3, nil, 5, zerolog.Nop())
	p.newBackOff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return p
}

func TestPokeAPI_BuildsFallbackChains(t *testing.T) {
	var hits atomic.Int32
	srv := newPokeServer(t, http.StatusOK, &hits)
	p := newTestPokeProvider(srv.URL)

	pool, err := p.GetCardPool(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetCardPool failed: %v", err)
	}
	if len(pool) != 3 {
		t.Fatalf("Expected 3 identities, got %d", len(pool))
	}

	byKey := map[string]Identity{}
	for _, id := range pool {
		byKey[id.Key] = id
	}

	bulba := normalizeSources(byKey["bulbasaur"].Sources, Placeholder)
	if bulba[0] != "art-1.png" || bulba[1] != "front-1.png" {
		t.Errorf("bulbasaur chain should start art, front; got %v", bulba)
	}
	if !strings.HasSuffix(bulba[2], "/other/official-artwork/1.png") || !strings.HasSuffix(bulba[3], "/1.png") {
		t.Errorf("bulbasaur chain should continue with id sprites, got %v", bulba)
	}
	if bulba[len(bulba)-1] != Placeholder {
		t.Errorf("Chain should end with placeholder, got %v", bulba)
	}

	ivy := byKey["ivysaur"].Sources
	if len(ivy) != 2 || !strings.HasSuffix(ivy[0], "/other/official-artwork/2.png") {
		t.Errorf("Failed detail should fall back to id sprites, got %v", ivy)
	}

	venu := normalizeSources(byKey["venusaur"].Sources, Placeholder)
	if venu[0] != "front-3.png" {
		t.Errorf("Missing artwork should be skipped, got %v", venu)
	}
}

func TestPokeAPI_SamplesMinCount(t *testing.T) {
	var hits atomic.Int32
	srv := newPokeServer(t, http.StatusOK, &hits)
	p := newTestPokeProvider(srv.URL)

	pool, err := p.GetCardPool(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetCardPool failed: %v", err)
	}
	if len(pool) != 2 {
		t.Errorf("Expected a sample of 2, got %d", len(pool))
	}
}

func TestPokeAPI_ListFailureIsUnavailable(t *testing.T) {
	var hits atomic.Int32
	srv := newPokeServer(t, http.StatusServiceUnavailable, &hits)
	p := newTestPokeProvider(srv.URL)

	_, err := p.GetCardPool(context.Background(), 3)

	var unavailable *ProviderUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected ProviderUnavailableError, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("Expected 3 list attempts, got %d", hits.Load())
	}
}

func TestPokeAPI_ClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := newPokeServer(t, http.StatusNotFound, &hits)
	p := newTestPokeProvider(srv.URL)

	if _, err := p.GetCardPool(context.Background(), 3); err == nil {
		t.Fatal("Expected error for 404 list")
	}
	if hits.Load() != 1 {
		t.Errorf("404 should not be retried, got %d attempts", hits.Load())
	}
}

func TestPokeAPI_FeedsBuilder(t *testing.T) {
	var hits atomic.Int32
	srv := newPokeServer(t, http.StatusOK, &hits)
	b := NewBuilder(newTestPokeProvider(srv.URL), 11)

	if _, err := b.Build(context.Background(), 4); err == nil {
		t.Fatal("Expected InsufficientCardPoolError for 4 pairs from 3 entries")
	} else {
		var insufficient *InsufficientCardPoolError
		if !errors.As(err, &insufficient) {
			t.Errorf("Expected InsufficientCardPoolError, got %v", err)
		}
	}

	deck, err := b.Build(context.Background(), 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(deck) != 6 {
		t.Errorf("Expected 6 cards, got %d", len(deck))
	}
}
