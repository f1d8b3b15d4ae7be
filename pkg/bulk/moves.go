package bulk

import (
	"context"
	"fmt"
	"sort"

	"github.com/nordgaard/pokefetch/pkg/pokedex"
)

// moveDetail is the decoded wire shape of a move resource. Power and
// accuracy are null for status moves.
type moveDetail struct {
	ID       int                   `json:"id"`
	Name     string                `json:"name"`
	Power    *int                  `json:"power"`
	Accuracy *int                  `json:"accuracy"`
	PP       int                   `json:"pp"`
	Type     pokedex.NamedResource `json:"type"`
}

// MoveInfo is one resolved learnable move of a Pokemon.
type MoveInfo struct {
	Name     string
	Method   string
	Level    int
	Power    int
	Accuracy int
	PP       int
	Type     string
}

// methodRank orders learn methods for result sorting. Level-up moves come
// first; unknown methods sort last.
func methodRank(method string) int {
	switch method {
	case "level-up":
		return 0
	case "egg":
		return 1
	case "tutor":
		return 2
	case "machine":
		return 3
	default:
		return 4
	}
}

// preferredDetail selects one version-group detail for a move: the first
// level-up entry with a positive level when present, otherwise the first
// entry.
func preferredDetail(details []pokedex.VersionGroupDetail) (method string, level int) {
	for _, d := range details {
		if d.MoveLearnMethod.Name == "level-up" && d.LevelLearnedAt > 0 {
			return d.MoveLearnMethod.Name, d.LevelLearnedAt
		}
	}
	if len(details) > 0 {
		return details[0].MoveLearnMethod.Name, details[0].LevelLearnedAt
	}
	return "", 0
}

// MovesFor resolves the learnable moves of the given parent entity, capped
// at the configured maximum, deduplicated by name. The parent is served
// from the bulk dedup caches when the run has seen it; move details are
// served from the process-lifetime move cache when previously resolved.
// Individual move fetch failures are skipped. Results are sorted by learn
// method rank, then level ascending, then name ascending.
func (o *Orchestrator) MovesFor(ctx context.Context, parentID int) ([]MoveInfo, error) {
	parent := o.cachedParent(parentID)
	if parent == nil {
		var p pokedex.Pokemon
		if err := o.fetcher.GetJSON(ctx, fmt.Sprintf("/pokemon/%d", parentID), &p); err != nil {
			return nil, fmt.Errorf("fetch parent %d: %w", parentID, err)
		}
		parent = &p

		o.mu.Lock()
		o.byID[p.ID] = &p
		o.byName[pokedex.NormalizeName(p.Name)] = &p
		o.mu.Unlock()
	}

	seen := make(map[string]bool)
	var infos []MoveInfo

	for _, slot := range parent.Moves {
		if len(infos) >= o.maxMoves {
			break
		}
		name := slot.Move.Name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		method, level := preferredDetail(slot.VersionGroupDetails)

		detail, err := o.resolveMove(ctx, name)
		if err != nil {
			o.logger.Warn().
				Err(err).
				Str("move", name).
				Msg("Skipping unresolvable move")
			continue
		}

		info := MoveInfo{
			Name:   name,
			Method: method,
			Level:  level,
			PP:     detail.PP,
			Type:   detail.Type.Name,
		}
		if detail.Power != nil {
			info.Power = *detail.Power
		}
		if detail.Accuracy != nil {
			info.Accuracy = *detail.Accuracy
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		ri, rj := methodRank(infos[i].Method), methodRank(infos[j].Method)
		if ri != rj {
			return ri < rj
		}
		if infos[i].Level != infos[j].Level {
			return infos[i].Level < infos[j].Level
		}
		return infos[i].Name < infos[j].Name
	})

	return infos, nil
}

// resolveMove returns the move detail from the cache, fetching on miss.
func (o *Orchestrator) resolveMove(ctx context.Context, name string) (*moveDetail, error) {
	o.mu.Lock()
	cached, ok := o.moveCache[name]
	o.mu.Unlock()
	if ok {
		return cached, nil
	}

	var detail moveDetail
	if err := o.fetcher.GetJSON(ctx, "/move/"+name, &detail); err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.moveCache[name] = &detail
	o.mu.Unlock()

	return &detail, nil
}
