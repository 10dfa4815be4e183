package cards

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPokeAPIBaseURL = "https://pokeapi.co/api/v2"
	DefaultPokeAPILimit   = 151

	spriteBaseURL   = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"
	maxBodyBytes    = 4 << 20
	detailFetchJobs = 8
)

// PokeAPIProvider draws card identities from the PokeAPI species list.
// Only the list request is fatal; a failed detail request falls back to
// sprite URLs derived from the entry id.
type PokeAPIProvider struct {
	baseURL    string
	limit      int
	client     *http.Client
	maxTries   uint
	newBackOff func() backoff.BackOff
	log        zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type pokeEntry struct {
	Name string
	URL  string
	ID   int
}

func NewPokeAPIProvider(baseURL string, limit int, client *http.Client, seed int64, log zerolog.Logger) *PokeAPIProvider {
	if baseURL == "" {
		baseURL = DefaultPokeAPIBaseURL
	}
	if limit <= 0 {
		limit = DefaultPokeAPILimit
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PokeAPIProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		limit:    limit,
		client:   client,
		maxTries: 3,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		log: log,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (p *PokeAPIProvider) Name() string {
	return "pokeapi"
}

func (p *PokeAPIProvider) GetCardPool(ctx context.Context, minCount int) ([]Identity, error) {
	entries, err := p.list(ctx)
	if err != nil {
		return nil, &ProviderUnavailableError{Provider: p.Name(), Err: err}
	}

	picks := p.sample(entries, minCount)
	identities := make([]Identity, len(picks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchJobs)
	for i, e := range picks {
		g.Go(func() error {
			identities[i] = p.identity(gctx, e)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &ProviderUnavailableError{Provider: p.Name(), Err: err}
	}
	return identities, nil
}

func (p *PokeAPIProvider) list(ctx context.Context) ([]pokeEntry, error) {
	url := fmt.Sprintf("%s/pokemon?limit=%d", p.baseURL, p.limit)

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return p.get(ctx, url)
	},
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(p.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			p.log.Warn().Err(err).Str("url", url).Dur("retry_in", wait).Msg("card pool fetch failed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}

	var entries []pokeEntry
	for _, r := range gjson.GetBytes(body, "results").Array() {
		e := pokeEntry{Name: r.Get("name").String(), URL: r.Get("url").String()}
		if e.Name == "" {
			continue
		}
		e.ID, _ = strconv.Atoi(path.Base(strings.TrimRight(e.URL, "/")))
		entries = append(entries, e)
	}
	return entries, nil
}

// sample picks n entries uniformly without replacement, or all of them when
// the list is shorter.
func (p *PokeAPIProvider) sample(entries []pokeEntry, n int) []pokeEntry {
	if len(entries) <= n {
		return entries
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	shuffle(p.rng, entries)
	return entries[:n]
}

func (p *PokeAPIProvider) identity(ctx context.Context, e pokeEntry) Identity {
	id := Identity{Key: e.Name, Label: e.Name}

	body, err := p.get(ctx, e.URL)
	if err != nil {
		p.log.Debug().Err(err).Str("pokemon", e.Name).Msg("detail fetch failed, using id sprites")
		id.Sources = spriteFallbacks(e.ID)
		return id
	}

	doc := gjson.ParseBytes(body)
	num := int(doc.Get("id").Int())
	if num == 0 {
		num = e.ID
	}
	id.Sources = append([]string{
		doc.Get("sprites.other.official-artwork.front_default").String(),
		doc.Get("sprites.other.dream_world.front_default").String(),
		doc.Get("sprites.front_default").String(),
	}, spriteFallbacks(num)...)
	return id
}

func spriteFallbacks(id int) []string {
	if id <= 0 {
		return nil
	}
	return []string{
		fmt.Sprintf("%s/other/official-artwork/%d.png", spriteBaseURL, id),
		fmt.Sprintf("%s/%d.png", spriteBaseURL, id),
	}
}

func (p *PokeAPIProvider) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("GET %s: %s", url, resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}
