// Package pokedex provides the decoded Pokemon domain model, the in-memory
// entity cache, and the cache-first repository facade over the API client.
package pokedex

import (
	"strconv"
	"strings"
)

// NamedResource is a lightweight name+URL reference returned by paginated
// listing endpoints and embedded in entity sub-structures.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID derives the numeric resource id from the trailing path segment of the
// URL. Returns 0 when the URL carries no parsable id.
func (r NamedResource) ID() int {
	trimmed := strings.TrimSuffix(r.URL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// Page is a paginated listing response.
type Page struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// StatSlot is one base stat value of a Pokemon.
type StatSlot struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// TypeSlot is one type tag of a Pokemon, ordered by slot.
type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// AbilitySlot is one ability of a Pokemon, ordered by slot.
type AbilitySlot struct {
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
	Ability  NamedResource `json:"ability"`
}

// VersionGroupDetail describes how a move is learned in one version group.
type VersionGroupDetail struct {
	LevelLearnedAt  int           `json:"level_learned_at"`
	MoveLearnMethod NamedResource `json:"move_learn_method"`
	VersionGroup    NamedResource `json:"version_group"`
}

// MoveSlot is one learnable move reference of a Pokemon.
type MoveSlot struct {
	Move                NamedResource        `json:"move"`
	VersionGroupDetails []VersionGroupDetail `json:"version_group_details"`
}

// Sprites holds the default artwork URLs.
type Sprites struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny"`
	BackDefault  string `json:"back_default"`
	BackShiny    string `json:"back_shiny"`
}

// Pokemon is a fully decoded creature record. Values are immutable once
// fetched; a re-fetch produces a fresh value that replaces the cache entry.
type Pokemon struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	Weight         int           `json:"weight"`
	BaseExperience int           `json:"base_experience"`
	Stats          []StatSlot    `json:"stats"`
	Types          []TypeSlot    `json:"types"`
	Abilities      []AbilitySlot `json:"abilities"`
	Moves          []MoveSlot    `json:"moves"`
	Sprites        Sprites       `json:"sprites"`
}

// PrimaryType returns the slot-1 type name, or "" when untyped.
func (p *Pokemon) PrimaryType() string {
	for _, t := range p.Types {
		if t.Slot == 1 {
			return t.Type.Name
		}
	}
	if len(p.Types) > 0 {
		return p.Types[0].Type.Name
	}
	return ""
}

// NormalizeName canonicalizes a display name for cache lookups and API
// paths: lowercase, trimmed, with inner spaces collapsed to hyphens.
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(normalized), "-")
}
