// Package maintenance inspects stored action logs offline: it verifies hash
// chains, replays games and exports their logs.
package maintenance

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/legions/internal/platform/config"
	"github.com/louisbranch/legions/internal/services/game/domain/game"
	"github.com/louisbranch/legions/internal/services/game/domain/replay"
	"github.com/louisbranch/legions/internal/services/game/storage"
	"github.com/louisbranch/legions/internal/services/game/storage/integrity"
	"github.com/louisbranch/legions/internal/services/game/storage/sqlite"
)

const listPageSize = 100

// Config holds maintenance command configuration.
type Config struct {
	DBPath   string        `env:"LEGIONS_GAME_DB_PATH"`
	Timeout  time.Duration `env:"LEGIONS_MAINTENANCE_TIMEOUT" envDefault:"10m"`
	Games    string
	UntilSeq uint64
	Verify   bool
	Replay   bool
	Export   bool
	Snapshot bool
	JSON     bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "legions.db")
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the action log database")
	fs.StringVar(&cfg.Games, "games", "", "comma-separated game names (default: every game)")
	fs.Uint64Var(&cfg.UntilSeq, "until-seq", 0, "replay up to this sequence (0 = latest)")
	fs.BoolVar(&cfg.Verify, "verify", false, "check the hash chain of each log")
	fs.BoolVar(&cfg.Replay, "replay", false, "rebuild each game from its log")
	fs.BoolVar(&cfg.Export, "export", false, "print the log of a single game, one action per line")
	fs.BoolVar(&cfg.Snapshot, "snapshot", false, "include the replayed state in the report (implies -replay)")
	fs.BoolVar(&cfg.JSON, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Report is the outcome for one game.
type Report struct {
	Game     string         `json:"game"`
	Status   string         `json:"status"`
	LastSeq  uint64         `json:"last_seq"`
	Verified bool           `json:"verified,omitempty"`
	Applied  int            `json:"applied,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Run executes the maintenance command within cfg.Timeout. It returns an
// error when any game failed a check, after reporting every game.
func Run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Snapshot {
		cfg.Replay = true
	}
	names := splitNames(cfg.Games)
	if cfg.Export && (len(names) != 1 || cfg.Verify || cfg.Replay) {
		return errors.New("-export needs exactly one game in -games and no other mode")
	}
	if !cfg.Export && !cfg.Verify && !cfg.Replay {
		return errors.New("one of -verify, -replay or -export is required")
	}

	var opts []sqlite.Option
	keyring, err := integrity.KeyringFromEnv()
	switch {
	case err == nil:
		opts = append(opts, sqlite.WithKeyring(keyring))
	case !errors.Is(err, integrity.ErrKeyNotConfigured):
		return err
	}
	store, err := sqlite.Open(cfg.DBPath, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", err)
		}
	}()

	if cfg.Export {
		return export(ctx, store, names[0], cfg.UntilSeq, out)
	}
	return check(ctx, store, cfg, names, out)
}

func check(ctx context.Context, store storage.Store, cfg Config, names []string, out io.Writer) error {
	records, err := gameRecords(ctx, store, names)
	if err != nil {
		return err
	}
	failed := 0
	for _, rec := range records {
		report := inspect(ctx, store, cfg, rec)
		if report.Error != "" {
			failed++
		}
		if err := writeReport(out, report, cfg.JSON); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d games failed", failed, len(records))
	}
	return nil
}

func inspect(ctx context.Context, store storage.Store, cfg Config, rec storage.GameRecord) Report {
	report := Report{Game: rec.Name, Status: string(rec.Status)}
	seq, err := store.LatestSeq(ctx, rec.Name)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.LastSeq = seq

	if cfg.Verify {
		if err := store.VerifyChain(ctx, rec.Name); err != nil {
			report.Error = err.Error()
			return report
		}
		report.Verified = true
	}
	if cfg.Replay {
		g, err := game.New(rec.Name, game.Authoritative())
		if err != nil {
			report.Error = err.Error()
			return report
		}
		res, err := replay.Replay(ctx, store, g, replay.Options{UntilSeq: cfg.UntilSeq})
		report.Applied = res.Applied
		if err != nil {
			report.Error = err.Error()
			return report
		}
		if cfg.Snapshot {
			snap := g.Snapshot()
			report.Snapshot = &snap
		}
	}
	return report
}

func export(ctx context.Context, store storage.ActionStore, name string, untilSeq uint64, out io.Writer) error {
	var after uint64
	for {
		recs, err := store.ListActions(ctx, name, after, listPageSize)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if untilSeq > 0 && rec.Seq > untilSeq {
				return nil
			}
			if _, err := fmt.Fprintln(out, rec.Line); err != nil {
				return err
			}
			after = rec.Seq
		}
		if len(recs) < listPageSize {
			return nil
		}
	}
}

func gameRecords(ctx context.Context, store storage.GameStore, names []string) ([]storage.GameRecord, error) {
	if len(names) > 0 {
		records := make([]storage.GameRecord, 0, len(names))
		for _, name := range names {
			rec, err := store.GetGame(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("get game %s: %w", name, err)
			}
			records = append(records, rec)
		}
		return records, nil
	}

	var records []storage.GameRecord
	req := storage.ListGamesRequest{PageSize: listPageSize, OrderBy: "name"}
	for {
		page, err := store.ListGames(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("list games: %w", err)
		}
		records = append(records, page.Games...)
		if page.NextPageToken == "" {
			return records, nil
		}
		req.PageToken = page.NextPageToken
	}
}

func writeReport(out io.Writer, report Report, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(out).Encode(report)
	}
	line := fmt.Sprintf("%s status=%s seq=%d", report.Game, report.Status, report.LastSeq)
	if report.Verified {
		line += " verified"
	}
	if report.Applied > 0 {
		line += fmt.Sprintf(" applied=%d", report.Applied)
	}
	if report.Error != "" {
		line += " error=" + report.Error
	}
	_, err := fmt.Fprintln(out, line)
	return err
}

func splitNames(value string) []string {
	var names []string
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
