package payrun

import (
	"context"
	"sort"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/domain/session"
)

// HistoryService is the read-only per-employee record listing with void
// status. Available in any period; the period lock only gates edits.
type HistoryService struct {
	gateway payrun.Gateway
}

func NewHistoryService(gateway payrun.Gateway) *HistoryService {
	return &HistoryService{gateway: gateway}
}

// History lists an employee's past records, newest period first. When a
// period is given, records are filtered to it client-side; the service
// endpoint only keys on employee.
func (s *HistoryService) History(ctx context.Context, sess session.Session, employeeID int64, period *payrun.Period) ([]payrun.HistoryRecord, error) {
	if !sess.CanViewHistory {
		return nil, payrun.ErrRunNotPermitted
	}

	records, err := s.gateway.History(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if period != nil {
		filtered := records[:0]
		for _, r := range records {
			if r.Period.Equal(*period) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Period.Year != records[j].Period.Year {
			return records[i].Period.Year > records[j].Period.Year
		}
		return records[i].Period.Month > records[j].Period.Month
	})

	return records, nil
}
