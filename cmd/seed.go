package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/cardintel-cli/internal/fetcher"
	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/resilience"
	"github.com/sells-group/cardintel-cli/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <source>",
	Short: "Load card reference entries into the local table",
	Long:  "Loads LocalCardEntry rows from a local YAML or CSV file, or from an ftp:// or http(s):// catalog feed. Existing entries for the same card are updated.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		entries, err := loadSeedEntries(ctx, args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return eris.Errorf("no entries in %s", args[0])
		}

		n, err := seedEntries(ctx, st, entries)
		if err != nil {
			return err
		}

		zap.L().Info("seed: loaded entries", zap.Int("count", n), zap.String("source", args[0]))
		fmt.Fprintf(os.Stderr, "Loaded %d entries\n", n)
		return nil
	},
}

// seedEntries prefers the postgres bulk path when available.
func seedEntries(ctx context.Context, st store.Store, entries []model.LocalCardEntry) (int, error) {
	if pg, ok := st.(*store.PostgresStore); ok {
		n, err := pg.SeedEntries(ctx, entries)
		return int(n), err
	}
	for _, e := range entries {
		if err := st.UpsertEntry(ctx, e); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

func loadSeedEntries(ctx context.Context, source string) ([]model.LocalCardEntry, error) {
	switch {
	case strings.HasPrefix(source, "ftp://"):
		return downloadSeedEntries(ctx, fetcher.NewFTPFetcher(fetcher.FTPOptions{}), source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return downloadSeedEntries(ctx, fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}), source)
	default:
		file, err := os.Open(source)
		if err != nil {
			return nil, eris.Wrapf(err, "open seed file %s", source)
		}
		defer file.Close() //nolint:errcheck
		return parseSeedEntries(ctx, file, source)
	}
}

// downloadSeedEntries retries transient failures of remote catalog feeds.
func downloadSeedEntries(ctx context.Context, f fetcher.Fetcher, source string) ([]model.LocalCardEntry, error) {
	retryCfg := resilience.FromRetryConfig(cfg.Scrape.Retries, 0, 0, 0, -1)
	retryCfg.OnRetry = func(attempt int, err error) {
		zap.L().Warn("seed: retrying download",
			zap.String("source", source),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) ([]model.LocalCardEntry, error) {
		rc, err := f.Download(ctx, source)
		if err != nil {
			return nil, err
		}
		defer rc.Close() //nolint:errcheck
		return parseSeedEntries(ctx, rc, source)
	})
}

func parseSeedEntries(ctx context.Context, r io.Reader, source string) ([]model.LocalCardEntry, error) {
	if strings.EqualFold(filepath.Ext(strings.TrimRight(source, "/")), ".csv") {
		return parseSeedCSV(ctx, r)
	}
	return parseSeedYAML(r)
}

func parseSeedYAML(r io.Reader) ([]model.LocalCardEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read seed data")
	}
	var doc struct {
		Entries []model.LocalCardEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "parse seed yaml")
	}
	return doc.Entries, nil
}

// parseSeedCSV expects a header row:
// sport,year,manufacturer,set_name,player_name,card_number,parallel,avg_raw_price,avg_psa9_price,avg_psa10_price,sample_size
func parseSeedCSV(ctx context.Context, r io.Reader) ([]model.LocalCardEntry, error) {
	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
	})

	var entries []model.LocalCardEntry
	for row := range rowCh {
		if len(row) < 11 {
			zap.L().Warn("seed: skipping short csv row", zap.Int("fields", len(row)))
			continue
		}
		year, err := strconv.Atoi(row[1])
		if err != nil {
			zap.L().Warn("seed: skipping row with bad year", zap.String("year", row[1]))
			continue
		}
		entry := model.LocalCardEntry{
			Sport:        row[0],
			Year:         year,
			Manufacturer: row[2],
			SetName:      row[3],
			PlayerName:   row[4],
			CardNumber:   row[5],
			Parallel:     row[6],
			LastUpdated:  time.Now().UTC(),
		}
		entry.AvgRawPrice, _ = strconv.ParseFloat(row[7], 64)
		entry.AvgPSA9Price, _ = strconv.ParseFloat(row[8], 64)
		entry.AvgPSA10Price, _ = strconv.ParseFloat(row[9], 64)
		entry.SampleSize, _ = strconv.Atoi(row[10])
		entries = append(entries, entry)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return entries, nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
