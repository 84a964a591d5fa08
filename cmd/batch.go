package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/cardintel-cli/internal/extract"
	"github.com/sells-group/cardintel-cli/internal/model"
	"github.com/sells-group/cardintel-cli/internal/ocr"
)

var batchOut string

var batchCmd = &cobra.Command{
	Use:   "batch <image-dir>",
	Short: "Process a directory of card images and price each card",
	Long:  "Pairs -front/-back images by filename stem, OCRs each side, extracts and merges card metadata, then resolves a price per card. OCR runs concurrently; pricing runs sequentially so the marketplace request delay is preserved.",
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

		reader, err := ocr.NewReader(cfg.OCR)
		if err != nil {
			return err
		}

		pairs, err := pairImages(args[0])
		if err != nil {
			return err
		}
		zap.L().Info("batch: starting", zap.Int("cards", len(pairs)))

		records := ocrAndExtract(ctx, reader, pairs)

		resolver := initResolver(st)
		results := make([]batchResult, 0, len(records))
		for _, rec := range records {
			if rec.record.Player == "" && rec.record.Set == "" {
				zap.L().Warn("batch: skipping card, no player or set extracted",
					zap.String("front", rec.front))
				results = append(results, batchResult{
					Front: rec.front,
					Back:  rec.back,
					Card:  rec.record,
					Skip:  "no player or set extracted",
				})
				continue
			}
			quote := resolver.Resolve(ctx, rec.record)
			results = append(results, batchResult{
				Front: rec.front,
				Back:  rec.back,
				Card:  rec.record,
				Quote: quote,
			})
			zap.L().Info("batch: card priced",
				zap.String("player", rec.record.Player),
				zap.String("source", string(quote.Source)),
				zap.Float64("listing", quote.ListingPrice),
			)
		}

		return writeBatchResults(results, batchOut)
	},
}

type imagePair struct {
	front string
	back  string
}

type extractedCard struct {
	front  string
	back   string
	record model.CardRecord
}

type batchResult struct {
	Front string            `json:"front_image"`
	Back  string            `json:"back_image,omitempty"`
	Card  model.CardRecord  `json:"card"`
	Quote *model.PriceQuote `json:"quote,omitempty"`
	Skip  string            `json:"skip_reason,omitempty"`
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
}

// pairImages walks a directory and groups images into front/back pairs by
// stem. "mike-trout-front.jpg" and "mike-trout-back.jpg" form one card; an
// image with no side suffix is its own front.
func pairImages(dir string) ([]imagePair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type sides struct{ front, back string }
	cards := make(map[string]*sides)
	var order []string

	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		key := stem
		side := "front"
		switch {
		case strings.HasSuffix(stem, "-front"):
			key = strings.TrimSuffix(stem, "-front")
		case strings.HasSuffix(stem, "-back"):
			key = strings.TrimSuffix(stem, "-back")
			side = "back"
		}

		c, ok := cards[key]
		if !ok {
			c = &sides{}
			cards[key] = c
			order = append(order, key)
		}
		if side == "back" {
			c.back = path
		} else {
			c.front = path
		}
	}

	sort.Strings(order)
	var pairs []imagePair
	for _, key := range order {
		c := cards[key]
		if c.front == "" {
			// Back without a front still gets processed alone.
			c.front = c.back
			c.back = ""
		}
		pairs = append(pairs, imagePair{front: c.front, back: c.back})
	}
	return pairs, nil
}

// ocrAndExtract runs OCR and extraction for all pairs with bounded
// concurrency. Extraction is total, so the group never errors.
func ocrAndExtract(ctx context.Context, reader ocr.Reader, pairs []imagePair) []extractedCard {
	concurrency := cfg.Batch.OCRConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	records := make([]extractedCard, len(pairs))

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			frontText, err := reader.Text(gctx, pair.front)
			if err != nil {
				zap.L().Warn("batch: front OCR failed", zap.String("image", pair.front), zap.Error(err))
				frontText = ""
			}
			front := extract.ClassifyAndExtract(frontText, filepath.Base(pair.front))

			var back *model.CardRecord
			if pair.back != "" {
				backText, err := reader.Text(gctx, pair.back)
				if err != nil {
					zap.L().Warn("batch: back OCR failed", zap.String("image", pair.back), zap.Error(err))
					backText = ""
				}
				b := extract.ClassifyAndExtract(backText, filepath.Base(pair.back))
				back = &b
			}

			player := extract.PlayerFromFilename(filepath.Base(pair.front))
			merged := extract.MergeDualSide(front, back, player)

			mu.Lock()
			records[i] = extractedCard{front: pair.front, back: pair.back, record: merged}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return records
}

func writeBatchResults(results []batchResult, outPath string) error {
	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func init() {
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write results to a JSON file instead of stdout")
	rootCmd.AddCommand(batchCmd)
}
