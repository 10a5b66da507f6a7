package store

import (
	"context"
	"fmt"

	"tasksync/internal/local"
	"tasksync/internal/tasksync"
)

// ApplySyncResult writes the local side of a successful sync cycle for list
// in one transaction: upserts, tombstones, remote id bindings, purges and the
// list's remote binding. A failed result is not applied.
func (s *Store) ApplySyncResult(ctx context.Context, listID string, res tasksync.Result) error {
	if !res.Success {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := local.Now()

	if res.ResolvedRemoteListID != "" {
		_, err := tx.ExecContext(ctx, `
			UPDATE lists SET remote_id = ?, remote_last_modified = COALESCE(?, remote_last_modified)
			WHERE id = ? AND (remote_id IS NULL OR remote_id = ?)`,
			res.ResolvedRemoteListID, nullString(res.RemoteListUpdated), listID, res.ResolvedRemoteListID)
		if err != nil {
			return fmt.Errorf("failed to bind list %s: %w", listID, err)
		}
	}

	for _, t := range res.LocalTasksToUpsert {
		t.ListID = listID
		if err := upsertTask(ctx, tx, t); err != nil {
			return err
		}
	}

	for _, b := range res.Bindings {
		_, err := tx.ExecContext(ctx, `UPDATE tasks SET remote_id = ? WHERE id = ?`, b.RemoteID, b.LocalID)
		if err != nil {
			return fmt.Errorf("failed to bind task %s: %w", b.LocalID, err)
		}
	}

	for _, id := range res.LocalTasksToMarkDeleted {
		if err := markDeleted(ctx, tx, id, now); err != nil {
			return err
		}
	}

	for _, id := range res.LocalTasksToPurge {
		if err := purge(ctx, tx, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync result: %w", err)
	}
	return nil
}
