package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wazo-platform/call-logd/internal/callgen"
)

// CallLogRecord pairs a persisted CallLog with the id the store assigned
// it on insert.
type CallLogRecord struct {
	ID int64
	callgen.CallLog
}

// ListFilter narrows ListCallLogs to a tenant and/or a date window.
// Zero values are unfiltered: a zero TenantUUID matches every tenant, a
// zero From/Until leaves that bound open.
type ListFilter struct {
	TenantUUID string
	From       time.Time
	Until      time.Time
	Limit      int
	Offset     int
}

// ListCallLogs returns persisted call logs matching filter, most recent
// first, with their participants attached.
func (db *DB) ListCallLogs(ctx context.Context, filter ListFilter) ([]CallLogRecord, error) {
	var where []string
	var args []any

	if filter.TenantUUID != "" {
		args = append(args, filter.TenantUUID)
		where = append(where, fmt.Sprintf("tenant_uuid = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !filter.Until.IsZero() {
		args = append(args, filter.Until)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	limitPlaceholder := fmt.Sprintf("$%d", len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := fmt.Sprintf("$%d", len(args))

	query := `
		SELECT id, date, date_answer, date_end,
		       source_name, source_exten, source_line, source_user_uuid,
		       destination_name, destination_exten, destination_line, destination_user_uuid,
		       requested_name, requested_exten, requested_context,
		       source_internal_exten, source_internal_context,
		       destination_internal_exten, destination_internal_context,
		       requested_internal_exten, requested_internal_context,
		       direction, tenant_uuid
		FROM call_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT %s OFFSET %s", limitPlaceholder, offsetPlaceholder)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CallLogRecord
	for rows.Next() {
		var rec CallLogRecord
		var direction string
		if err := rows.Scan(
			&rec.ID, &rec.Date, &rec.DateAnswer, &rec.DateEnd,
			&rec.SourceName, &rec.SourceExten, &rec.SourceLine, &rec.SourceUserUUID,
			&rec.DestinationName, &rec.DestinationExten, &rec.DestinationLine, &rec.DestinationUserUUID,
			&rec.RequestedName, &rec.RequestedExten, &rec.RequestedContext,
			&rec.SourceInternalExten, &rec.SourceInternalContext,
			&rec.DestinationInternalExten, &rec.DestinationInternalContext,
			&rec.RequestedInternalExten, &rec.RequestedInternalContext,
			&direction, &rec.TenantUUID,
		); err != nil {
			return nil, err
		}
		rec.Direction = callgen.Direction(direction)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		participants, err := db.fetchParticipants(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Participants = participants

		recordings, err := db.fetchRecordings(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Recordings = recordings
	}

	return records, nil
}

func (db *DB) fetchRecordings(ctx context.Context, callLogID int64) ([]callgen.Recording, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT start_time, end_time, path
		FROM call_log_recording
		WHERE call_log_id = $1
		ORDER BY start_time
	`, callLogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recordings []callgen.Recording
	for rows.Next() {
		var rec callgen.Recording
		var start, end time.Time
		if err := rows.Scan(&start, &end, &rec.Path); err != nil {
			return nil, err
		}
		rec.StartTime = &start
		rec.EndTime = &end
		recordings = append(recordings, rec)
	}
	return recordings, rows.Err()
}

func (db *DB) fetchParticipants(ctx context.Context, callLogID int64) ([]callgen.CallLogParticipant, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT user_uuid, line_id, role, tags, answered
		FROM call_log_participant
		WHERE call_log_id = $1
	`, callLogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []callgen.CallLogParticipant
	for rows.Next() {
		var p callgen.CallLogParticipant
		var role string
		if err := rows.Scan(&p.UserUUID, &p.LineID, &role, &p.Tags, &p.Answered); err != nil {
			return nil, err
		}
		p.Role = callgen.Role(role)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// InsertCallLog persists one CallLog and its participants/recordings in a
// single transaction, returning the assigned id.
func (db *DB) InsertCallLog(ctx context.Context, cl *callgen.CallLog) (int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO call_log (
			date, date_answer, date_end,
			source_name, source_exten, source_line, source_user_uuid,
			destination_name, destination_exten, destination_line, destination_user_uuid,
			requested_name, requested_exten, requested_context,
			source_internal_exten, source_internal_context,
			destination_internal_exten, destination_internal_context,
			requested_internal_exten, requested_internal_context,
			direction, tenant_uuid
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14,
			$15, $16,
			$17, $18,
			$19, $20,
			$21, $22
		) RETURNING id
	`,
		cl.Date, cl.DateAnswer, cl.DateEnd,
		cl.SourceName, cl.SourceExten, cl.SourceLine, cl.SourceUserUUID,
		cl.DestinationName, cl.DestinationExten, cl.DestinationLine, cl.DestinationUserUUID,
		cl.RequestedName, cl.RequestedExten, cl.RequestedContext,
		cl.SourceInternalExten, cl.SourceInternalContext,
		cl.DestinationInternalExten, cl.DestinationInternalContext,
		cl.RequestedInternalExten, cl.RequestedInternalContext,
		string(cl.Direction), cl.TenantUUID,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	for _, p := range cl.Participants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO call_log_participant (call_log_id, user_uuid, line_id, role, tags, answered)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, p.UserUUID, p.LineID, string(p.Role), p.Tags, p.Answered); err != nil {
			return 0, err
		}
	}

	for _, r := range cl.Recordings {
		if r.StartTime == nil || r.EndTime == nil {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO call_log_recording (call_log_id, start_time, end_time, path)
			VALUES ($1, $2, $3, $4)
		`, id, *r.StartTime, *r.EndTime, r.Path); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteCallLogsByIds removes call logs superseded by a regeneration
// (their participants and recordings cascade via foreign keys).
func (db *DB) DeleteCallLogsByIds(ctx context.Context, ids map[int64]struct{}) error {
	if len(ids) == 0 {
		return nil
	}
	idList := make([]int64, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}
	_, err := db.Pool.Exec(ctx, `DELETE FROM call_log WHERE id = ANY($1)`, idList)
	return err
}
