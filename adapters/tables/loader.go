package tables

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"alre/domain/core"
	"alre/domain/frame"
	"alre/internal"
	"alre/internal/errors"

	"golang.org/x/sync/errgroup"
)

// DirectorySource loads result sets from <root>/<set>/ directories, one table
// file per restart
type DirectorySource struct {
	root    string
	workers int
	logger  *internal.Logger
}

// NewDirectorySource creates a loader reading at most workers files at once
func NewDirectorySource(root string, workers int, logger *internal.Logger) *DirectorySource {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DirectorySource{root: root, workers: workers, logger: logger}
}

// Root returns the results directory
func (s *DirectorySource) Root() string {
	return s.root
}

// LoadResults reads every requested set. Restart order follows the number in
// each file name.
func (s *DirectorySource) LoadResults(ctx context.Context, sets []string) (map[string][]*frame.Frame, error) {
	start := time.Now()
	out := make(map[string][]*frame.Frame, len(sets))
	for _, set := range sets {
		tables, err := s.loadSet(ctx, set)
		if err != nil {
			return nil, err
		}
		out[set] = tables
	}
	s.logger.Info("loaded %d result sets from %s in %.2fms",
		len(sets), s.root, float64(time.Since(start).Nanoseconds())/1e6)
	return out, nil
}

func (s *DirectorySource) loadSet(ctx context.Context, set string) ([]*frame.Frame, error) {
	dir := filepath.Join(s.root, set)
	files, err := RestartFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(
				errors.WithCode(errors.CodeNotFound, core.NewMissingResultError(set)),
				"no directory "+dir)
		}
		return nil, errors.IOError("failed to list "+dir, err)
	}
	s.logger.Debug("%s: %d restart files", set, len(files))

	tables := make([]*frame.Frame, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr, err := ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "%s restart %d", set, i)
			}
			tables[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// RestartFiles lists table files in dir ordered by the leading restart number
// of the file name, then by name
func RestartFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || FileType(e.Name()) == "" || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.SliceStable(files, func(a, b int) bool {
		na, oka := restartNumber(files[a])
		nb, okb := restartNumber(files[b])
		if oka && okb && na != nb {
			return na < nb
		}
		if oka != okb {
			return oka
		}
		return files[a] < files[b]
	})
	return files, nil
}

// restartNumber extracts the first run of digits in the base name
func restartNumber(path string) (int, bool) {
	base := filepath.Base(path)
	start := strings.IndexFunc(base, unicode.IsDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(base) && unicode.IsDigit(rune(base[end])) {
		end++
	}
	n, err := strconv.Atoi(base[start:end])
	return n, err == nil
}
