package requests

import (
	"context"
	"fmt"

	"github.com/requesterr/requesterr/internal/database/sqlc"
)

// MergeSummary reports what one merge run changed.
type MergeSummary struct {
	Merged     int // duplicate requests folded away
	Reparented int // items moved to a canonical request
	Conflicts  int // duplicate (season, episode) pairs where the earlier item won
}

// MergeDuplicates collapses episode requests that track the same series
// into one canonical record: the earliest-created request keeps its id and
// created_at, items from later duplicates are re-parented onto it
// de-duplicated by (season, episode), and the emptied duplicates are
// deleted. Running it twice in a row is a no-op.
func (s *Service) MergeDuplicates(ctx context.Context) (*MergeSummary, error) {
	rows, err := s.queries.ListEpisodeRequestGroups(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MergeSummary{}

	// Rows are ordered by external id then created_at, so each series is a
	// contiguous run. Within a run, pending and approved rows can
	// interleave, so each eligibility class is collected separately; the
	// earliest member of a class is its canonical request.
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[start].ExternalMediaID == rows[end].ExternalMediaID {
			end++
		}

		byClass := make(map[string][]*sqlc.Request, 2)
		for _, row := range rows[start:end] {
			class := eligibilityClass(row.Status)
			byClass[class] = append(byClass[class], row)
		}
		for _, group := range byClass {
			if len(group) > 1 {
				if err := s.mergeGroup(ctx, group, summary); err != nil {
					return summary, err
				}
			}
		}

		start = end
	}

	if summary.Merged > 0 {
		s.logger.Info().
			Int("merged", summary.Merged).
			Int("reparented", summary.Reparented).
			Int("conflicts", summary.Conflicts).
			Msg("duplicate requests merged")
	}

	return summary, nil
}

// eligibilityClass separates pending (unapproved) requests from approved
// ones. They never merge across the boundary: folding a pending request
// into an active one would silently approve it.
func eligibilityClass(status string) string {
	if status == StatusPending {
		return "pending"
	}
	return "active"
}

// mergeGroup re-parents every duplicate's items onto the canonical request
// inside one transaction, then deletes the emptied duplicates. Items are
// never deleted before re-parenting succeeds.
func (s *Service) mergeGroup(ctx context.Context, group []*sqlc.Request, summary *MergeSummary) error {
	canonical := group[0]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	canonicalItems, err := qtx.ListRequestItems(ctx, canonical.ID)
	if err != nil {
		return err
	}

	tracked := make(map[EpisodeKey]bool, len(canonicalItems))
	for _, item := range canonicalItems {
		tracked[toItem(item).Key()] = true
	}

	for _, dup := range group[1:] {
		items, err := qtx.ListRequestItems(ctx, dup.ID)
		if err != nil {
			return err
		}

		for _, row := range items {
			key := toItem(row).Key()
			if tracked[key] {
				// The canonical request already tracks this episode; the
				// earlier item wins and the duplicate is dropped, loudly.
				summary.Conflicts++
				s.logger.Warn().
					Int64("canonicalID", canonical.ID).
					Int64("duplicateID", dup.ID).
					Int64("season", key.Season).
					Int64("episode", key.Episode).
					Msg("merge conflict: episode tracked twice, keeping earlier item")
				if err := qtx.DeleteRequestItem(ctx, row.ID); err != nil {
					return err
				}
				continue
			}

			if err := qtx.ReparentRequestItem(ctx, sqlc.ReparentRequestItemParams{
				RequestID: canonical.ID,
				ID:        row.ID,
			}); err != nil {
				return err
			}
			tracked[key] = true
			summary.Reparented++
		}

		remaining, err := qtx.CountRequestItems(ctx, dup.ID)
		if err != nil {
			return err
		}
		if remaining != 0 {
			return fmt.Errorf("merge left %d items on request %d", remaining, dup.ID)
		}

		if err := qtx.DeleteRequest(ctx, dup.ID); err != nil {
			return err
		}
		summary.Merged++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit merge: %w", err)
	}
	return nil
}
