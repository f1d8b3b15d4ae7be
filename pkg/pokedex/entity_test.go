package pokedex

import "testing"

func TestNamedResource_ID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{"trailing slash", "https://pokeapi.co/api/v2/pokemon/25/", 25},
		{"no trailing slash", "https://pokeapi.co/api/v2/pokemon/151", 151},
		{"nested resource", "https://pokeapi.co/api/v2/move/85/", 85},
		{"non-numeric segment", "https://pokeapi.co/api/v2/pokemon/pikachu/", 0},
		{"empty", "", 0},
		{"no path", "pokemon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NamedResource{URL: tt.url}
			if got := r.ID(); got != tt.expected {
				t.Errorf("ID() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Bulbasaur", "bulbasaur"},
		{"BULBASAUR", "bulbasaur"},
		{"  Pikachu  ", "pikachu"},
		{"Mr Mime", "mr-mime"},
		{"Mr  Mime", "mr-mime"},
		{"tapu koko", "tapu-koko"},
		{"nidoran-f", "nidoran-f"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPokemon_PrimaryType(t *testing.T) {
	p := &Pokemon{
		Types: []TypeSlot{
			{Slot: 2, Type: NamedResource{Name: "poison"}},
			{Slot: 1, Type: NamedResource{Name: "grass"}},
		},
	}
	if got := p.PrimaryType(); got != "grass" {
		t.Errorf("PrimaryType() = %q, want %q", got, "grass")
	}

	untyped := &Pokemon{}
	if got := untyped.PrimaryType(); got != "" {
		t.Errorf("PrimaryType() = %q, want empty", got)
	}
}
