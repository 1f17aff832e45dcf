package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle is the terminal error sink: it logs the error through the
// context logger, flattening goerr key-values into the record so the
// structured context attached at the failure site is queryable.
func Handle(ctx context.Context, err error) {
	logger := ctxlog.From(ctx)

	attrs := []any{"error", err}
	if goErr := goerr.Unwrap(err); goErr != nil {
		for k, v := range goErr.Values() {
			attrs = append(attrs, k, v)
		}
	}
	logger.Error("application error", attrs...)
}
