package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const batchColumns = `id, started_at, finished_at, output_dir, success_count, error_count,
    canceled, elapsed_ms, total_segments, failed_segments`

// RecordBatch stores a batch and its task results in one transaction.
// Recording the same batch ID twice fails.
func (s *Store) RecordBatch(ctx context.Context, batch Batch) error {
	ctx = ensureContext(ctx)
	if batch.ID == "" {
		return errors.New("record batch: empty batch id")
	}
	return retryOnBusy(ctx, func() error {
		return s.recordBatchTx(ctx, batch)
	})
}

func (s *Store) recordBatchTx(ctx context.Context, batch Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (`+batchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		formatTime(batch.StartedAt),
		formatTime(batch.FinishedAt),
		batch.OutputDir,
		batch.SuccessCount,
		batch.ErrorCount,
		boolToInt(batch.Canceled),
		batch.Elapsed.Milliseconds(),
		batch.TotalSegments,
		batch.FailedSegments,
	); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	for _, rec := range batch.Results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO task_results (
                batch_id, task_id, input_path, output_path, segment_count,
                success, failure_kind, error_message, elapsed_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.ID,
			rec.TaskID,
			rec.Input,
			nullableString(rec.Output),
			rec.SegmentCount,
			boolToInt(rec.Success),
			nullableString(rec.FailureKind),
			nullableString(rec.Error),
			rec.Elapsed.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert task result %d: %w", rec.TaskID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// ListBatches returns the most recent batches first, without task results.
// A limit of zero or less returns every batch.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// GetBatch returns a batch with its task results ordered by task ID, or nil
// when no batch has that ID. A unique ID prefix is accepted.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`,
		id, id+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	var matches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, batch)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}

	var batch Batch
	switch {
	case len(matches) == 0:
		return nil, nil
	case len(matches) == 1:
		batch = matches[0]
	default:
		exact := false
		for _, m := range matches {
			if m.ID == id {
				batch, exact = m, true
			}
		}
		if !exact {
			return nil, fmt.Errorf("batch id prefix %q is ambiguous", id)
		}
	}

	results, err := s.taskResults(ctx, batch.ID)
	if err != nil {
		return nil, err
	}
	batch.Results = results
	return &batch, nil
}

// PruneBefore deletes batches that started before cutoff and reports how many
// were removed. Task results go with them.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE started_at < ?`, formatTime(cutoff))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune batches: %w", err)
	}
	return removed, nil
}

func (s *Store) taskResults(ctx context.Context, batchID string) ([]TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, input_path, output_path, segment_count, success,
            failure_kind, error_message, elapsed_ms
        FROM task_results WHERE batch_id = ? ORDER BY task_id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task results: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var (
			rec       TaskRecord
			output    sql.NullString
			kind      sql.NullString
			message   sql.NullString
			success   int
			elapsedMS int64
		)
		if err := rows.Scan(&rec.TaskID, &rec.Input, &output, &rec.SegmentCount, &success, &kind, &message, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		rec.Output = output.String
		rec.FailureKind = kind.String
		rec.Error = message.String
		rec.Success = success != 0
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task results: %w", err)
	}
	return records, nil
}

func scanBatch(scanner interface{ Scan(dest ...any) error }) (Batch, error) {
	var (
		batch                   Batch
		startedRaw, finishedRaw string
		canceled                int
		elapsedMS               int64
	)
	if err := scanner.Scan(
		&batch.ID,
		&startedRaw,
		&finishedRaw,
		&batch.OutputDir,
		&batch.SuccessCount,
		&batch.ErrorCount,
		&canceled,
		&elapsedMS,
		&batch.TotalSegments,
		&batch.FailedSegments,
	); err != nil {
		return Batch{}, fmt.Errorf("scan batch: %w", err)
	}
	batch.Canceled = canceled != 0
	batch.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if t, err := parseTimeString(startedRaw); err == nil {
		batch.StartedAt = t
	}
	if t, err := parseTimeString(finishedRaw); err == nil {
		batch.FinishedAt = t
	}
	return batch, nil
}
