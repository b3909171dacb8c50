package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/BushMasterhtps/text-club-sub002/internal/repository/models"
)

// WorkItemRepository reads the completed-work snapshot: work items, board
// completions and the agent roster. Timestamps are stored as RFC3339 text;
// queries compare them through sqlite's datetime(), which normalizes any UTC
// offset, so rows written by importers in other timezones still filter and
// sort chronologically.
type WorkItemRepository struct {
	db *sql.DB
}

func NewWorkItemRepository(db *sql.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// ForEachWorkItemInWindow streams every item completed in [start, end)
// through fn in completion order. A zero start walks the full history. Rows
// are folded one at a time; the caller never holds the full result set.
func (r *WorkItemRepository) ForEachWorkItemInWindow(ctx context.Context, start, end time.Time, fn func(models.WorkItem) error) error {
	const query = `
		SELECT id, agent_id, completed_by, category, disposition, started_at, completed_at
		FROM work_items
		WHERE datetime(completed_at) >= datetime(?) AND datetime(completed_at) < datetime(?)
		ORDER BY datetime(completed_at)
	`

	rows, err := r.db.QueryContext(ctx, query, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("query ForEachWorkItemInWindow: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item        models.WorkItem
			completedBy sql.NullString
			disposition sql.NullString
			startedAt   sql.NullString
			completedAt string
		)
		if err := rows.Scan(&item.ID, &item.AgentID, &completedBy, &item.Category, &disposition, &startedAt, &completedAt); err != nil {
			return fmt.Errorf("scan ForEachWorkItemInWindow row: %w", err)
		}

		item.CompletedBy = completedBy.String
		item.Disposition = disposition.String

		item.CompletedAt, err = time.Parse(time.RFC3339, completedAt)
		if err != nil {
			return fmt.Errorf("parse completed_at for item %d: %w", item.ID, err)
		}
		if startedAt.Valid {
			t, err := time.Parse(time.RFC3339, startedAt.String)
			if err != nil {
				return fmt.Errorf("parse started_at for item %d: %w", item.ID, err)
			}
			item.StartedAt = &t
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate ForEachWorkItemInWindow: %w", err)
	}
	return nil
}

// ListExternalCompletions fetches board completions whose calendar date falls
// inside [start, end). Dates carry no time component.
func (r *WorkItemRepository) ListExternalCompletions(ctx context.Context, start, end time.Time) ([]models.ExternalCompletion, error) {
	const query = `
		SELECT agent_id, date, count
		FROM external_completions
		WHERE date >= ? AND date < ?
		ORDER BY date, agent_id
	`

	rows, err := r.db.QueryContext(ctx, query, start.UTC().Format("2006-01-02"), end.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query ListExternalCompletions: %w", err)
	}
	defer rows.Close()

	var results []models.ExternalCompletion
	for rows.Next() {
		var (
			ec   models.ExternalCompletion
			date string
		)
		if err := rows.Scan(&ec.AgentID, &date, &ec.Count); err != nil {
			return nil, fmt.Errorf("scan ListExternalCompletions row: %w", err)
		}
		ec.Date, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse date for agent %s: %w", ec.AgentID, err)
		}
		results = append(results, ec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListExternalCompletions: %w", err)
	}
	return results, nil
}

// ListAgents fetches the roster, including the restricted-only capability
// tag used by the partitioner's secondary exclusion.
func (r *WorkItemRepository) ListAgents(ctx context.Context) ([]models.Agent, error) {
	const query = `
		SELECT id, name, restricted_only
		FROM agents
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ListAgents: %w", err)
	}
	defer rows.Close()

	var results []models.Agent
	for rows.Next() {
		var a models.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.RestrictedOnly); err != nil {
			return nil, fmt.Errorf("scan ListAgents row: %w", err)
		}
		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListAgents: %w", err)
	}
	return results, nil
}
