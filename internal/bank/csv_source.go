package bank

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"club-recon/internal/domain"
	"club-recon/internal/parser"
	"club-recon/pkg/logger"
)

// CSVSource reads statement exports dropped into a directory. Files for an
// account are named <accountRef>.csv, <accountRef>-*.csv or <accountRef>_*.csv.
type CSVSource struct {
	dir    string
	parser parser.StatementParser
}

func NewCSVSource(dir string, loc *time.Location) *CSVSource {
	return &CSVSource{
		dir:    dir,
		parser: parser.NewCSVStatementParser(loc),
	}
}

func (s *CSVSource) FetchTransactions(ctx context.Context, accountRef string, from, to time.Time) ([]domain.RawRecord, error) {
	files, err := s.files(accountRef)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("file", path).Error("Failed to open file")
			return nil, fmt.Errorf("failed to open file: %w", err)
		}

		err = s.parser.Parse(f, 500, func(batch []domain.RawRecord) error {
			for _, r := range batch {
				if r.OccurredAt.Before(from) || r.OccurredAt.After(to) {
					continue
				}
				records = append(records, r)
			}
			return nil
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}

	return records, nil
}

func (s *CSVSource) files(accountRef string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading statement dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		base := name[:len(name)-len(".csv")]
		if base != accountRef && !strings.HasPrefix(base, accountRef+"-") && !strings.HasPrefix(base, accountRef+"_") {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	sort.Strings(files)
	return files, nil
}
