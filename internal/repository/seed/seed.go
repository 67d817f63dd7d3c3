// Package seed preloads a catalog store from JSON files.
package seed

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/kailas-cloud/citrination/internal/domain/record"
)

// Target is a store that accepts records as they are.
type Target interface {
	AddDataset(ctx context.Context, d record.Dataset) (record.Dataset, error)
	AddPif(ctx context.Context, p record.Pif) error
}

// Load adds datasets and then PIF systems from JSON array files to dst.
// Empty paths are skipped. It returns the number of datasets and systems
// loaded.
func Load(ctx context.Context, dst Target, datasetsPath, pifsPath string) (int, int, error) {
	var datasets []record.Dataset
	if err := readJSON(datasetsPath, &datasets); err != nil {
		return 0, 0, err
	}
	for _, d := range datasets {
		if _, err := dst.AddDataset(ctx, d); err != nil {
			return 0, 0, errors.Wrapf(err, "seed dataset %d", d.ID)
		}
	}

	var pifs []record.Pif
	if err := readJSON(pifsPath, &pifs); err != nil {
		return len(datasets), 0, err
	}
	for i, p := range pifs {
		if err := dst.AddPif(ctx, p); err != nil {
			return len(datasets), i, errors.Wrapf(err, "seed pif %d", i)
		}
	}
	return len(datasets), len(pifs), nil
}

func readJSON(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "read seed %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "parse seed %s", path)
	}
	return nil
}
