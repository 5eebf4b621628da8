package catalog

import (
	"context"
	"log/slog"

	"github.com/payrollhq/payrun-backend-go/internal/domain/catalog"
)

// Service is the read-only accessor over the pay-component catalog used for
// ad-hoc adjustments.
type Service struct {
	source catalog.Source
	logger *slog.Logger
}

func NewService(source catalog.Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, logger: logger}
}

// List returns the adjustable components, with protected names filtered out
// because the calculation engine applies those automatically. A fetch
// failure degrades to an empty catalog (degraded=true) rather than an
// error; the adjustment stage stays usable with base-input edits only.
func (s *Service) List(ctx context.Context) (components []catalog.ComponentDef, degraded bool) {
	all, err := s.source.Components(ctx)
	if err != nil {
		s.logger.Warn("component catalog unavailable, continuing with empty set", "error", err)
		return []catalog.ComponentDef{}, true
	}

	components = make([]catalog.ComponentDef, 0, len(all))
	for _, def := range all {
		if catalog.Protected(def.ComponentName) {
			continue
		}
		components = append(components, def)
	}
	return components, false
}
