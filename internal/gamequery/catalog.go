package gamequery

import (
	"sort"
	"strings"
)

type Protocol string

const ProtocolValve Protocol = "valve"

type Game struct {
	ID          string
	Name        string
	Protocol    Protocol
	DefaultPort int
}

// Catalog - неизменяемый справочник игр, упорядоченный по ID.
type Catalog struct {
	games []Game
	byID  map[string]Game
}

func NewCatalog(games ...Game) *Catalog {
	c := &Catalog{
		games: make([]Game, 0, len(games)),
		byID:  make(map[string]Game, len(games)),
	}
	for _, g := range games {
		if _, dup := c.byID[g.ID]; dup {
			continue
		}
		c.byID[g.ID] = g
		c.games = append(c.games, g)
	}
	sort.Slice(c.games, func(i, j int) bool { return c.games[i].ID < c.games[j].ID })
	return c
}

func DefaultCatalog() *Catalog {
	valve := func(id, name string, port int) Game {
		return Game{ID: id, Name: name, Protocol: ProtocolValve, DefaultPort: port}
	}
	return NewCatalog(
		valve("7d2d", "7 Days to Die", 26900),
		valve("arkse", "ARK: Survival Evolved", 27015),
		valve("conanexiles", "Conan Exiles", 27015),
		valve("counterstrike2", "Counter-Strike 2", 27015),
		valve("cs16", "Counter-Strike 1.6", 27015),
		valve("csgo", "Counter-Strike: Global Offensive", 27015),
		valve("css", "Counter-Strike: Source", 27015),
		valve("dayz", "DayZ", 27016),
		valve("dods", "Day of Defeat: Source", 27015),
		valve("garrysmod", "Garry's Mod", 27015),
		valve("hl2dm", "Half-Life 2: Deathmatch", 27015),
		valve("hll", "Hell Let Loose", 27016),
		valve("insurgency", "Insurgency", 27015),
		valve("insurgencysandstorm", "Insurgency: Sandstorm", 27131),
		valve("l4d", "Left 4 Dead", 27015),
		valve("l4d2", "Left 4 Dead 2", 27015),
		valve("nmrih", "No More Room in Hell", 27015),
		valve("projectzomboid", "Project Zomboid", 16261),
		valve("rust", "Rust", 28015),
		valve("squad", "Squad", 27165),
		valve("svencoop", "Sven Co-op", 27015),
		valve("tf2", "Team Fortress 2", 27015),
		valve("theforest", "The Forest", 27016),
		valve("unturned", "Unturned", 27016),
		valve("valheim", "Valheim", 2457),
	)
}

func (c *Catalog) Lookup(id string) (Game, bool) {
	g, ok := c.byID[id]
	return g, ok
}

// DisplayName возвращает название игры или "Unknown" для неизвестного ID.
func (c *Catalog) DisplayName(id string) string {
	if g, ok := c.byID[id]; ok {
		return g.Name
	}
	return "Unknown"
}

func (c *Catalog) All() []Game {
	out := make([]Game, len(c.games))
	copy(out, c.games)
	return out
}

// Search - подстрочный поиск по ID, не более limit результатов (limit <= 0 - без лимита).
func (c *Catalog) Search(partial string, limit int) []Game {
	var out []Game
	for _, g := range c.games {
		if !strings.Contains(g.ID, partial) {
			continue
		}
		out = append(out, g)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
