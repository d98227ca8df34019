package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/availability"
	"github.com/mike7019/Masajes-sub000/services/booking-service/internal/model"
)

// SaveBlockedInterval creates a blocked interval, or replaces existingID when it is non-empty.
// An interval that ends up active must not overlap any other active interval; deactivating
// skips the check and reactivating runs it again.
func (s *Service) SaveBlockedInterval(ctx context.Context, req BlockRequest, existingID, actor string) (model.BlockedInterval, error) {
	in, err := ValidateBlock(req)
	if err != nil {
		return model.BlockedInterval{}, err
	}

	var saved model.BlockedInterval
	err = s.store.InTx(ctx, func(q Queries) error {
		now := s.now()
		block := model.BlockedInterval{ID: uuid.NewString(), Active: true, CreatedAt: now}
		if existingID != "" {
			block, err = getBlock(ctx, q, existingID, true)
			if err != nil {
				return err
			}
		}
		block.StartAt = in.StartAt.In(s.cfg.Location)
		block.EndAt = in.EndAt.In(s.cfg.Location)
		block.Reason = in.Reason
		block.Description = in.Description
		if in.Active != nil {
			block.Active = *in.Active
		}
		block.UpdatedAt = now

		if block.Active {
			if err := q.LockSchedule(ctx); err != nil {
				return internal("lock schedule", err)
			}
			others, err := q.ActiveBlocks(ctx, block.StartAt, block.EndAt)
			if err != nil {
				return internal("list blocked intervals", err)
			}
			for _, other := range others {
				if other.ID == block.ID || !other.Active {
					continue
				}
				if availability.Overlaps(block.StartAt, block.EndAt, other.StartAt, other.EndAt) {
					return newError(KindOverlappingBlock, "overlaps the blocked period %s (%s)", s.formatPeriod(other.StartAt, other.EndAt), other.Reason)
				}
			}
		}

		if existingID == "" {
			err = q.InsertBlock(ctx, block)
		} else {
			err = q.UpdateBlock(ctx, block)
		}
		if err != nil {
			return internal("save blocked interval", err)
		}
		saved = block
		return nil
	})
	if err != nil {
		return model.BlockedInterval{}, domainError("save blocked interval", err)
	}
	s.logger.Info("blocked interval saved", "block_id", saved.ID, "start_at", saved.StartAt, "end_at", saved.EndAt,
		"active", saved.Active, "actor", actor)
	return saved, nil
}

func (s *Service) GetBlockedInterval(ctx context.Context, id string) (model.BlockedInterval, error) {
	return getBlock(ctx, s.store, id, false)
}

func (s *Service) ListBlockedIntervals(ctx context.Context, f BlockFilter) ([]model.BlockedInterval, error) {
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return nil, newError(KindInvalidRange, "to must be after from")
	}
	list, err := s.store.ListBlocks(ctx, f)
	if err != nil {
		return nil, internal("list blocked intervals", err)
	}
	return list, nil
}

func (s *Service) DeleteBlockedInterval(ctx context.Context, id, actor string) error {
	if _, err := uuid.Parse(id); err != nil {
		return newError(KindNotFound, "blocked interval %s not found", id)
	}
	err := s.store.DeleteBlock(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return newError(KindNotFound, "blocked interval %s not found", id)
	}
	if err != nil {
		return internal("delete blocked interval", err)
	}
	s.logger.Info("blocked interval deleted", "block_id", id, "actor", actor)
	return nil
}

func getBlock(ctx context.Context, q Queries, id string, forUpdate bool) (model.BlockedInterval, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.BlockedInterval{}, newError(KindNotFound, "blocked interval %s not found", id)
	}
	b, err := q.GetBlock(ctx, id, forUpdate)
	if errors.Is(err, ErrNotFound) {
		return model.BlockedInterval{}, newError(KindNotFound, "blocked interval %s not found", id)
	}
	if err != nil {
		return model.BlockedInterval{}, internal("load blocked interval", err)
	}
	return b, nil
}

func (s *Service) formatPeriod(start, end time.Time) string {
	start, end = start.In(s.cfg.Location), end.In(s.cfg.Location)
	if start.Format(time.DateOnly) == end.Format(time.DateOnly) {
		return fmt.Sprintf("%s %s–%s", start.Format(time.DateOnly), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s – %s", start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
}
