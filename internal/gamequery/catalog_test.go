package gamequery

import (
	"fmt"
	"strings"
	"testing"
)

func TestCatalogLookup(t *testing.T) {
	c := DefaultCatalog()

	g, ok := c.Lookup("css")
	if !ok {
		t.Fatal("css must be in the default catalog")
	}
	if g.Name != "Counter-Strike: Source" || g.Protocol != ProtocolValve || g.DefaultPort != 27015 {
		t.Fatalf("unexpected css entry: %+v", g)
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Fatal("unknown id must not resolve")
	}
	if got := c.DisplayName("nope"); got != "Unknown" {
		t.Fatalf("DisplayName(nope) = %q, want Unknown", got)
	}
}

func TestCatalogSearchSubstring(t *testing.T) {
	c := DefaultCatalog()

	got := c.Search("cs", 0)
	if len(got) == 0 {
		t.Fatal("expected matches for cs")
	}
	for _, g := range got {
		if !strings.Contains(g.ID, "cs") {
			t.Fatalf("%s does not contain cs", g.ID)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID > got[i].ID {
			t.Fatalf("results not ordered: %s before %s", got[i-1].ID, got[i].ID)
		}
	}
}

func TestCatalogSearchLimit(t *testing.T) {
	var games []Game
	for i := 0; i < 40; i++ {
		games = append(games, Game{ID: fmt.Sprintf("game%02d", i), Name: "G", Protocol: ProtocolValve})
	}
	c := NewCatalog(games...)

	if got := c.Search("", 25); len(got) != 25 {
		t.Fatalf("Search limit: got %d, want 25", len(got))
	}
	if got := c.Search("game3", 25); len(got) != 10 {
		t.Fatalf("Search game3: got %d, want 10", len(got))
	}
}

func TestNewCatalogSkipsDuplicates(t *testing.T) {
	c := NewCatalog(
		Game{ID: "a", Name: "first"},
		Game{ID: "a", Name: "second"},
	)
	if len(c.All()) != 1 {
		t.Fatalf("expected 1 game, got %d", len(c.All()))
	}
	if c.DisplayName("a") != "first" {
		t.Fatalf("first registration must win, got %q", c.DisplayName("a"))
	}
}
