package bulk

import "github.com/nordgaard/pokefetch/pkg/pokedex"

// FallbackPokemon returns the built-in sample set published when the
// initial listing call fails, so dependent callers never observe an empty
// result. The set spans a representative cross-section of types for
// offline and degraded-mode testing.
func FallbackPokemon() []*pokedex.Pokemon {
	return []*pokedex.Pokemon{
		fallbackEntry(1, "bulbasaur", 7, 69, 64, "grass", "poison"),
		fallbackEntry(4, "charmander", 6, 85, 62, "fire"),
		fallbackEntry(7, "squirtle", 5, 90, 63, "water"),
		fallbackEntry(16, "pidgey", 3, 18, 50, "normal", "flying"),
		fallbackEntry(25, "pikachu", 4, 60, 112, "electric"),
		fallbackEntry(39, "jigglypuff", 5, 55, 95, "normal", "fairy"),
		fallbackEntry(63, "abra", 9, 195, 62, "psychic"),
		fallbackEntry(66, "machop", 8, 195, 61, "fighting"),
		fallbackEntry(74, "geodude", 4, 200, 60, "rock", "ground"),
		fallbackEntry(92, "gastly", 13, 1, 62, "ghost", "poison"),
		fallbackEntry(133, "eevee", 3, 65, 65, "normal"),
		fallbackEntry(147, "dratini", 18, 33, 60, "dragon"),
	}
}

func fallbackEntry(id int, name string, height, weight, baseExp int, types ...string) *pokedex.Pokemon {
	p := &pokedex.Pokemon{
		ID:             id,
		Name:           name,
		Height:         height,
		Weight:         weight,
		BaseExperience: baseExp,
	}
	for i, t := range types {
		p.Types = append(p.Types, pokedex.TypeSlot{
			Slot: i + 1,
			Type: pokedex.NamedResource{Name: t},
		})
	}
	return p
}
