package daily

import (
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/bingo/internal/keycodec"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	d := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // still March 1st in UTC
	if got := DateKey(d); got != "2026-03-01" {
		t.Fatalf("DateKey = %q", got)
	}
}

func TestKeyStablePerDay(t *testing.T) {
	morning := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	tomorrow := morning.Add(24 * time.Hour)

	a, err := Key(morning, "salt", 42)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Key(evening, "salt", 42)
	c, _ := Key(tomorrow, "salt", 42)
	d, _ := Key(morning, "other", 42)

	if a != b {
		t.Fatalf("same day gave %q and %q", a, b)
	}
	if a == c || a == d {
		t.Fatal("different day or salt should change the key")
	}
	if len(a) != keycodec.KeyLen {
		t.Fatalf("key %q", a)
	}
}

func TestKeySmallCatalog(t *testing.T) {
	if _, err := Key(time.Now(), "s", 10); !errors.Is(err, keycodec.ErrCatalogTooSmall) {
		t.Fatalf("got %v", err)
	}
}
