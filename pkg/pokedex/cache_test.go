package pokedex

import (
	"fmt"
	"testing"
)

func testPokemon(id int, name string) *Pokemon {
	return &Pokemon{ID: id, Name: name}
}

func TestEntityCache_PutAndLookup(t *testing.T) {
	c := NewEntityCache()
	c.Put(testPokemon(1, "bulbasaur"))

	if p := c.ByID(1); p == nil || p.Name != "bulbasaur" {
		t.Errorf("ByID(1) = %+v", p)
	}
	if p := c.ByName("bulbasaur"); p == nil || p.ID != 1 {
		t.Errorf("ByName(bulbasaur) = %+v", p)
	}
	if p := c.ByID(2); p != nil {
		t.Errorf("ByID(2) = %+v, want nil", p)
	}
}

func TestEntityCache_NameLookupCaseInsensitive(t *testing.T) {
	c := NewEntityCache()
	c.Put(testPokemon(1, "bulbasaur"))

	for _, name := range []string{"Bulbasaur", "bulbasaur", "BULBASAUR", "  bulbasaur "} {
		if p := c.ByName(name); p == nil || p.ID != 1 {
			t.Errorf("ByName(%q) = %+v, want bulbasaur", name, p)
		}
	}
}

func TestEntityCache_PutOverwritesByID(t *testing.T) {
	c := NewEntityCache()
	c.Put(testPokemon(1, "bulbasaur"))
	c.Put(testPokemon(1, "bulbasaur"))

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if c.RecentLen() != 1 {
		t.Errorf("RecentLen() = %d, want 1 (recent list de-duplicates by id)", c.RecentLen())
	}
}

func TestEntityCache_RecentEviction(t *testing.T) {
	c := NewEntityCache()
	for id := 1; id <= 12; id++ {
		c.Put(testPokemon(id, fmt.Sprintf("pokemon-%d", id)))
	}

	recent := c.Recent()
	if len(recent) != RecentCapacity {
		t.Fatalf("len(Recent()) = %d, want %d", len(recent), RecentCapacity)
	}

	expected := []int{12, 11, 10, 9, 8, 7, 6, 5, 4, 3}
	for i, want := range expected {
		if recent[i].ID != want {
			t.Errorf("Recent()[%d].ID = %d, want %d", i, recent[i].ID, want)
		}
	}

	// The two oldest fell off the recent list but remain cached.
	if c.ByID(1) == nil || c.ByID(2) == nil {
		t.Error("Evicted recents must stay in the main cache")
	}
}

func TestEntityCache_RecentPromotion(t *testing.T) {
	c := NewEntityCache()
	c.Put(testPokemon(1, "bulbasaur"))
	c.Put(testPokemon(2, "ivysaur"))
	c.Put(testPokemon(1, "bulbasaur"))

	recent := c.Recent()
	if len(recent) != 2 {
		t.Fatalf("len(Recent()) = %d, want 2", len(recent))
	}
	if recent[0].ID != 1 || recent[1].ID != 2 {
		t.Errorf("Recent() order = [%d %d], want [1 2]", recent[0].ID, recent[1].ID)
	}
}

func TestEntityCache_Clear(t *testing.T) {
	c := NewEntityCache()
	c.Put(testPokemon(1, "bulbasaur"))
	c.Put(testPokemon(2, "ivysaur"))

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if c.RecentLen() != 0 {
		t.Errorf("RecentLen() = %d, want 0", c.RecentLen())
	}
	if c.ByID(1) != nil || c.ByName("bulbasaur") != nil {
		t.Error("Lookups after Clear() must miss")
	}
}
