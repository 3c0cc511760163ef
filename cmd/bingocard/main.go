// bingocard deals a bingo card in the terminal.
//
// With no flags it generates a fresh card and prints its key. --key renders
// the card a shared link points at, --daily renders today's card, and
// --mark toggles cells so a finished board can be checked:
//
//	bingocard --key 0a1b2c... --mark 0,0 --mark 1,1 --mark 3,3 --mark 4,4
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/robalobadob/bingo/internal/board"
	"github.com/robalobadob/bingo/internal/card"
	"github.com/robalobadob/bingo/internal/catalog"
	"github.com/robalobadob/bingo/internal/daily"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var (
		key         string
		catalogPath string
		useDaily    bool
		date        string
		salt        string
		marks       []string
		width       int
	)

	flagSet := pflag.NewFlagSet("bingocard", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.StringVar(&key, "key", "", "card key to render (default: generate one)")
	flagSet.StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_FILE"), "catalog file (.yaml or plain text; default: embedded)")
	flagSet.BoolVar(&useDaily, "daily", false, "render the daily card")
	flagSet.StringVar(&date, "date", "", "day for --daily as YYYY-MM-DD (default: today, UTC)")
	flagSet.StringVar(&salt, "salt", envOr("DAILY_SALT", "local_dev_salt"), "salt for --daily")
	flagSet.StringArrayVar(&marks, "mark", nil, "toggle the cell at ROW,COL (repeatable)")
	flagSet.IntVar(&width, "width", 14, "cell width in columns")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintln(stdout, "Usage: bingocard [flags]")
		flagSet.PrintDefaults()
		return nil
	}
	if useDaily && flagSet.Changed("key") {
		return fmt.Errorf("--key and --daily are mutually exclusive")
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	hasKey := flagSet.Changed("key")
	if useDaily {
		day := time.Now().UTC()
		if date != "" {
			if day, err = time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("--date: %w", err)
			}
		}
		if key, err = daily.Key(day, salt, cat.Len()); err != nil {
			return err
		}
		hasKey = true
	}

	dealer := &card.Dealer{Catalog: cat}
	c, err := dealer.Deal(key, hasKey)
	if err != nil {
		return err
	}

	var last card.Outcome
	for _, m := range marks {
		p, err := parsePos(m)
		if err != nil {
			return err
		}
		if last, err = c.Toggle(context.Background(), p); err != nil {
			return fmt.Errorf("--mark %s: %w", m, err)
		}
	}

	fmt.Fprintln(stdout, render(c.Cells(), width))
	fmt.Fprintf(stdout, "key:     %s\n", c.Key)
	fmt.Fprintf(stdout, "catalog: %s (%s)\n", cat.Version(), cat.Fingerprint())
	if last.Bingo {
		fmt.Fprintf(stdout, "BINGO! (%s)\n", last.Line)
	}
	return nil
}

// parsePos reads "ROW,COL".
func parsePos(s string) (board.Pos, error) {
	rs, cs, ok := strings.Cut(s, ",")
	if !ok {
		return board.Pos{}, fmt.Errorf("--mark %q: want ROW,COL", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return board.Pos{}, fmt.Errorf("--mark %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(cs))
	if err != nil {
		return board.Pos{}, fmt.Errorf("--mark %q: %w", s, err)
	}
	return board.Pos{Row: row, Col: col}, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
