package snapshot

import (
	"fmt"
	"strconv"

	"world-sync/core/crawler"
)

const infoFile = "info"

// ContinentKey returns the two-digit continent name of a coordinate.
func ContinentKey(x, y int) string {
	return fmt.Sprintf("%d%d", y/100, x/100)
}

// continents groups villages as continent -> x -> y -> record.
func continents(snap *crawler.Snapshot) map[string]map[string]map[string][]any {
	out := make(map[string]map[string]map[string][]any)
	for _, v := range snap.Villages {
		key := ContinentKey(v.X, v.Y)
		cols, ok := out[key]
		if !ok {
			cols = make(map[string]map[string][]any)
			out[key] = cols
		}
		x := strconv.Itoa(v.X)
		if cols[x] == nil {
			cols[x] = make(map[string][]any)
		}
		owner := 0
		if v.CharacterID != nil {
			owner = *v.CharacterID
		}
		cols[x][strconv.Itoa(v.Y)] = []any{v.ID, v.Name, v.Points, owner, v.ProvinceID}
	}
	return out
}

// Info is the content of the info file.
type Info struct {
	Config map[string]any `json:"config"`
	// Players maps id to [name, tribe_id or 0, points, villages, rank, victory_points].
	Players map[string][]any `json:"players"`
	// Tribes maps id to [name, tag, points, villages, members, rank, victory_points].
	Tribes map[string][]any `json:"tribes"`
	// Provinces holds province names indexed by province id.
	Provinces []string `json:"provinces"`
}

func info(snap *crawler.Snapshot) Info {
	out := Info{
		Config:  snap.Config,
		Players: make(map[string][]any, len(snap.Players)),
		Tribes:  make(map[string][]any, len(snap.Tribes)),
	}
	if out.Config == nil {
		out.Config = map[string]any{}
	}

	for id, p := range snap.Players {
		tribe := 0
		if p.TribeID != nil {
			tribe = *p.TribeID
		}
		out.Players[strconv.Itoa(id)] = []any{p.Name, tribe, p.Points, p.Villages, p.Rank, p.VictoryPoints}
	}
	for id, t := range snap.Tribes {
		out.Tribes[strconv.Itoa(id)] = []any{t.Name, t.Tag, t.Points, t.Villages, t.Members, t.Rank, t.VictoryPoints}
	}

	maxID := -1
	for id := range snap.Provinces {
		maxID = max(maxID, id)
	}
	out.Provinces = make([]string, maxID+1)
	for id, p := range snap.Provinces {
		if id >= 0 {
			out.Provinces[id] = p.Name
		}
	}
	return out
}
