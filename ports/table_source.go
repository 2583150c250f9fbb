package ports

import (
	"context"

	"alre/domain/frame"
)

// TableSourcePort provides the restart tables of an experiment, keyed by result
// set name ("mle", "ucb_nllr", "random_nllr")
type TableSourcePort interface {
	LoadResults(ctx context.Context, sets []string) (map[string][]*frame.Frame, error)
}
