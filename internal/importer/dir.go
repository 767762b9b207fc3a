package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/camilotorresmestra/globant-de/internal/domain"
)

// LoadDir ingests every *.csv file in dir whose name is a dataset name,
// running up to Workers files at a time. Other files are skipped. The
// first failing file cancels the rest; acks are sorted by dataset.
func (o *Orchestrator) LoadDir(ctx context.Context, dir string) ([]Ack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		if _, err := domain.ParseDatasetKind(e.Name()); err != nil {
			o.log.WithField("file", e.Name()).Warn("skipping file: not a known dataset")
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load dir: no dataset files in %s", dir)
	}

	acks := make([]Ack, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := ReadFile(path)
			if err != nil {
				return fmt.Errorf("load dir: %w", err)
			}
			ack, err := o.Ingest(gctx, filepath.Base(path), content)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			acks[i] = ack
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(acks, func(i, j int) bool { return acks[i].Dataset < acks[j].Dataset })
	return acks, nil
}
