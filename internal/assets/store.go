// Package assets loads the trained classifiers and the category encoder bundle
// once at startup and exposes them read-only.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fraud-assessment-service/internal/classifier"
	"fraud-assessment-service/internal/metrics"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

const EncoderBundleFile = "label_encoders.json"

// ModelFile binds a classifier display name to its artifact file.
type ModelFile struct {
	Name string
	File string
}

// DefaultModelFiles is the fixed set of classifier variants, default first.
var DefaultModelFiles = []ModelFile{
	{Name: "XGBoost (Best Performance)", File: "xgboost.json"},
	{Name: "Random Forest", File: "random_forest.json"},
	{Name: "Logistic Regression", File: "logistic_regression.json"},
}

// Store holds every loaded artifact. It is never mutated after Load returns.
type Store struct {
	dir         string
	order       []string
	classifiers map[string]classifier.Classifier
	encoders    *EncoderBundle
}

// Load reads all classifier artifacts and the encoder bundle from dir. It
// returns either a complete Store or an error naming the first file that
// failed; no partially loaded Store is ever returned.
func Load(ctx context.Context, dir string, files []ModelFile) (*Store, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no classifier artifacts configured")
	}
	start := time.Now()

	loaded := make([]classifier.Classifier, len(files))
	var encoders *EncoderBundle

	g, gctx := errgroup.WithContext(ctx)
	for i, mf := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := loadClassifier(filepath.Join(dir, mf.File), mf.Name)
			if err != nil {
				return err
			}
			loaded[i] = c
			return nil
		})
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		b, err := loadEncoders(filepath.Join(dir, EncoderBundleFile))
		if err != nil {
			return err
		}
		encoders = b
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("asset store load failed", "dir", dir, "error", err)
		return nil, err
	}

	s := &Store{
		dir:         dir,
		order:       make([]string, 0, len(files)),
		classifiers: make(map[string]classifier.Classifier, len(files)),
		encoders:    encoders,
	}
	for i, mf := range files {
		s.order = append(s.order, mf.Name)
		s.classifiers[mf.Name] = loaded[i]
	}

	metrics.AssetLoadDuration.Observe(time.Since(start).Seconds())
	slog.Info("asset store loaded",
		"dir", dir,
		"models", s.order,
		"encoded_columns", len(encoders.Columns()),
		"duration", time.Since(start))
	return s, nil
}

func readAsset(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingAssetError{Path: path}
		}
		return nil, &CorruptAssetError{Path: path, Err: err}
	}
	return data, nil
}

func loadClassifier(path, name string) (classifier.Classifier, error) {
	data, err := readAsset(path)
	if err != nil {
		return nil, err
	}
	c, err := classifier.Decode(name, data)
	if err != nil {
		return nil, &CorruptAssetError{Path: path, Err: err}
	}
	return c, nil
}

func loadEncoders(path string) (*EncoderBundle, error) {
	data, err := readAsset(path)
	if err != nil {
		return nil, err
	}
	var classes map[string][]string
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, &CorruptAssetError{Path: path, Err: err}
	}
	if len(classes) == 0 {
		return nil, &CorruptAssetError{Path: path, Err: errors.New("encoder bundle is empty")}
	}
	b, err := NewEncoderBundle(classes)
	if err != nil {
		return nil, &CorruptAssetError{Path: path, Err: err}
	}
	return b, nil
}

func (s *Store) Dir() string { return s.dir }

// Variants lists classifier names in configuration order.
func (s *Store) Variants() []string {
	return append([]string(nil), s.order...)
}

func (s *Store) Classifier(name string) (classifier.Classifier, bool) {
	c, ok := s.classifiers[name]
	return c, ok
}

func (s *Store) Encoders() *EncoderBundle {
	return s.encoders
}

// AssetStatus is the outcome of checking one artifact file.
type AssetStatus struct {
	Path  string `json:"path"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Verify checks every artifact independently, so all failures are reported
// rather than only the first.
func Verify(dir string, files []ModelFile) []AssetStatus {
	statuses := make([]AssetStatus, 0, len(files)+1)
	record := func(path string, err error) {
		st := AssetStatus{Path: path, OK: err == nil}
		if err != nil {
			st.Error = err.Error()
		}
		statuses = append(statuses, st)
	}

	for _, mf := range files {
		path := filepath.Join(dir, mf.File)
		_, err := loadClassifier(path, mf.Name)
		record(path, err)
	}
	path := filepath.Join(dir, EncoderBundleFile)
	_, err := loadEncoders(path)
	record(path, err)
	return statuses
}
