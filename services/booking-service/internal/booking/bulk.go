package booking

import (
	"context"
	"strings"

	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

const maxBulkItems = 100

type BulkAction string

const (
	BulkConfirm  BulkAction = "confirm"
	BulkComplete BulkAction = "complete"
	BulkCancel   BulkAction = "cancel"
	BulkRemind   BulkAction = "remind"
)

var bulkTargets = map[BulkAction]model.Status{
	BulkConfirm:  model.StatusConfirmed,
	BulkComplete: model.StatusCompleted,
	BulkCancel:   model.StatusCancelled,
}

type BulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
	Reason string   `json:"reason,omitempty"`
}

// BulkResult is the outcome for one reservation of a bulk request.
type BulkResult struct {
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Status  string `json:"status,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Bulk runs action on each reservation independently; one failure never stops the rest.
func (s *Service) Bulk(ctx context.Context, req BulkRequest, actor string) ([]BulkResult, error) {
	action := BulkAction(strings.ToLower(strings.TrimSpace(req.Action)))
	if _, ok := bulkTargets[action]; !ok && action != BulkRemind {
		return nil, newError(KindInvalidInput, "action: must be one of confirm, complete, cancel, remind")
	}
	ids := dedupe(req.IDs)
	if len(ids) == 0 {
		return nil, newError(KindInvalidInput, "ids: at least one reservation id is required")
	}
	if len(ids) > maxBulkItems {
		return nil, newError(KindInvalidInput, "ids: at most %d reservations per request", maxBulkItems)
	}

	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		var res model.Reservation
		var err error
		if action == BulkRemind {
			res, err = s.remind(ctx, id, actor)
		} else {
			res, err = s.ChangeStatus(ctx, id, bulkTargets[action], req.Reason, actor)
		}
		if err != nil {
			if KindOf(err) == KindInternal {
				s.logger.Error("bulk item failed", "err", err, "reservation_id", id, "action", string(action))
			}
			results = append(results, BulkResult{ID: id, Code: string(KindOf(err)), Message: MessageOf(err)})
			continue
		}
		results = append(results, BulkResult{ID: id, OK: true, Status: string(res.Status)})
	}
	return results, nil
}

// remind sends a reminder now for a reservation that still occupies its slot.
func (s *Service) remind(ctx context.Context, id, actor string) (model.Reservation, error) {
	var out model.Reservation
	err := s.store.InTx(ctx, func(q Queries) error {
		res, err := getReservation(ctx, q, id, true)
		if err != nil {
			return err
		}
		if !res.Status.Blocking() {
			return newError(KindInvalidTransition, "cannot send a reminder for a %s reservation", res.Status)
		}
		if err := q.AppendHistory(ctx, s.historyEntry(res.ID, model.ActionReminded, "manual reminder", actor)); err != nil {
			return internal("append history", err)
		}
		s.notify(ctx, q, res, s.serviceName(ctx, q, res.ServiceID), "", NotifyReminder)
		out = res
		return nil
	})
	return out, domainError("send reminder", err)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
