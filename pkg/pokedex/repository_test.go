package pokedex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nordgaard/pokefetch/pkg/client"
)

// fakeFetcher serves canned JSON per endpoint and counts calls.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	errors    map[string]error
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]string),
		errors:    make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeFetcher) GetJSON(ctx context.Context, endpoint string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.calls[endpoint]++
	body, ok := f.responses[endpoint]
	err := f.errors[endpoint]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		return &client.APIError{StatusCode: 404, Class: client.ErrorClassNotFound, Endpoint: endpoint, Err: client.ErrNotFound}
	}
	return json.Unmarshal([]byte(body), v)
}

func (f *fakeFetcher) callCount(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeFetcher) addPokemon(id int, name string) {
	body := fmt.Sprintf(`{"id":%d,"name":"%s"}`, id, name)
	f.mu.Lock()
	f.responses[fmt.Sprintf("/pokemon/%d", id)] = body
	f.responses["/pokemon/"+name] = body
	f.mu.Unlock()
}

func newTestRepository(t *testing.T, fetcher *fakeFetcher) *Repository {
	t.Helper()
	repo, err := NewRepository(RepositoryConfig{
		Fetcher:    fetcher,
		BatchPause: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	return repo
}

func TestNewRepository_RequiresFetcher(t *testing.T) {
	if _, err := NewRepository(RepositoryConfig{}); err == nil {
		t.Error("NewRepository() without fetcher should fail")
	}
}

func TestGetByID_CacheHitSkipsNetwork(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addPokemon(1, "bulbasaur")
	repo := newTestRepository(t, fetcher)
	ctx := context.Background()

	first, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	second, err := repo.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID() second call error = %v", err)
	}

	if first != second {
		t.Error("Cache hit should return the identical value")
	}
	if n := fetcher.callCount("/pokemon/1"); n != 1 {
		t.Errorf("network calls = %d, want 1", n)
	}
}

func TestGetByName_CaseInsensitive(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addPokemon(1, "bulbasaur")
	repo := newTestRepository(t, fetcher)
	ctx := context.Background()

	var fetched []*Pokemon
	for _, name := range []string{"Bulbasaur", "bulbasaur", "BULBASAUR"} {
		p, err := repo.GetByName(ctx, name)
		if err != nil {
			t.Fatalf("GetByName(%q) error = %v", name, err)
		}
		fetched = append(fetched, p)
	}

	if fetched[0] != fetched[1] || fetched[1] != fetched[2] {
		t.Error("All case variants should resolve to the same cached entity")
	}
	if n := fetcher.callCount("/pokemon/bulbasaur"); n != 1 {
		t.Errorf("network calls = %d, want 1", n)
	}
}

func TestGetByName_PopulatesBothKeys(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addPokemon(25, "pikachu")
	repo := newTestRepository(t, fetcher)
	ctx := context.Background()

	if _, err := repo.GetByName(ctx, "Pikachu"); err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}

	// Subsequent id lookup must hit the cache.
	if _, err := repo.GetByID(ctx, 25); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if n := fetcher.callCount("/pokemon/25"); n != 0 {
		t.Errorf("id fetch after name fetch hit network %d times, want 0", n)
	}
}

func TestGetByID_ErrorRecordedAndPropagated(t *testing.T) {
	fetcher := newFakeFetcher()
	repo := newTestRepository(t, fetcher)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 999999)
	if !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("GetByID() = %v, want ErrNotFound", err)
	}

	if last := repo.LastError(); !errors.Is(last, client.ErrNotFound) {
		t.Errorf("LastError() = %v, want the fetch error", last)
	}

	// A successful fetch clears the recorded error.
	fetcher.addPokemon(1, "bulbasaur")
	if _, err := repo.GetByID(ctx, 1); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if last := repo.LastError(); last != nil {
		t.Errorf("LastError() after success = %v, want nil", last)
	}
}

func TestSearch_FiltersAndMemoizes(t *testing.T) {
	fetcher := newFakeFetcher()
	listing := `{"count":4,"results":[
		{"name":"bulbasaur","url":"https://pokeapi.co/api/v2/pokemon/1/"},
		{"name":"ivysaur","url":"https://pokeapi.co/api/v2/pokemon/2/"},
		{"name":"venusaur","url":"https://pokeapi.co/api/v2/pokemon/3/"},
		{"name":"charmander","url":"https://pokeapi.co/api/v2/pokemon/4/"}]}`
	fetcher.responses["/pokemon?limit=1000&offset=0"] = listing
	repo := newTestRepository(t, fetcher)
	ctx := context.Background()

	results, err := repo.Search(ctx, "SAUR")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Name != "bulbasaur" || results[0].ID() != 1 {
		t.Errorf("results[0] = %+v", results[0])
	}

	// Memoized: the same query (any case) does not refetch the listing.
	if _, err := repo.Search(ctx, "saur"); err != nil {
		t.Fatalf("Search() second call error = %v", err)
	}
	if n := fetcher.callCount("/pokemon?limit=1000&offset=0"); n != 1 {
		t.Errorf("listing fetches = %d, want 1", n)
	}
}

func TestGetBatch_SkipsFailures(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addPokemon(1, "bulbasaur")
	fetcher.addPokemon(2, "ivysaur")
	// id 999999 stays unknown and 404s.
	repo := newTestRepository(t, fetcher)

	results := repo.GetBatch(context.Background(), []int{1, 999999, 2})

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != 1 || results[1].ID != 2 {
		t.Errorf("results = [%d %d], want [1 2]", results[0].ID, results[1].ID)
	}
	// The failure must not have aborted the batch before id 2.
	if n := fetcher.callCount("/pokemon/2"); n != 1 {
		t.Errorf("id 2 fetched %d times, want 1", n)
	}
}

func TestGetBatch_Cancellation(t *testing.T) {
	fetcher := newFakeFetcher()
	for id := 1; id <= 5; id++ {
		fetcher.addPokemon(id, fmt.Sprintf("pokemon-%d", id))
	}

	repo, err := NewRepository(RepositoryConfig{
		Fetcher:    fetcher,
		BatchPause: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(75 * time.Millisecond)
		cancel()
	}()

	results := repo.GetBatch(ctx, []int{1, 2, 3, 4, 5})
	if len(results) == 0 || len(results) >= 5 {
		t.Errorf("len(results) = %d, want partial result set", len(results))
	}
}

func TestClearCache_ZeroesStats(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.addPokemon(1, "bulbasaur")
	fetcher.responses["/pokemon?limit=1000&offset=0"] = `{"count":0,"results":[]}`
	repo := newTestRepository(t, fetcher)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 1); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if _, err := repo.Search(ctx, "saur"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if stats := repo.Stats(); stats.Cached != 1 || stats.Recent != 1 || stats.SearchEntries != 1 {
		t.Fatalf("Stats() before clear = %+v", stats)
	}

	if err := repo.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache() error = %v", err)
	}

	stats := repo.Stats()
	if stats.Cached != 0 || stats.Recent != 0 || stats.SearchEntries != 0 || stats.ResponseBytes != 0 {
		t.Errorf("Stats() after clear = %+v, want zeroes", stats)
	}

	// Next lookup goes back to the network.
	if _, err := repo.GetByID(ctx, 1); err != nil {
		t.Fatalf("GetByID() after clear error = %v", err)
	}
	if n := fetcher.callCount("/pokemon/1"); n != 2 {
		t.Errorf("network calls = %d, want 2", n)
	}
}
