package store

import (
	"context"

	"github.com/wazo-platform/call-logd/internal/callgen"
)

// FetchByLinkedId returns every CEL sharing the given linked-id, ordered
// by id (which tracks emission order). This is the collaborator read the
// core never performs itself.
func (db *DB) FetchByLinkedId(ctx context.Context, linkedID string) ([]callgen.CEL, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, event_type, event_time, channel_name, unique_id, linked_id,
		       cid_name, cid_num, exten, context, app_data, user_field, call_log_id
		FROM cel
		WHERE linked_id = $1
		ORDER BY id
	`, linkedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cels []callgen.CEL
	for rows.Next() {
		var c callgen.CEL
		var eventType string
		if err := rows.Scan(
			&c.ID, &eventType, &c.EventTime, &c.ChannelName, &c.UniqueID, &c.LinkedID,
			&c.CidName, &c.CidNum, &c.Exten, &c.Context, &c.AppData, &c.UserField, &c.CallLogID,
		); err != nil {
			return nil, err
		}
		c.EventType = callgen.EventType(eventType)
		cels = append(cels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cels, nil
}

// InsertCel appends one CEL to the store. The switch integration calls
// this as events arrive; callgen never writes CELs itself.
func (db *DB) InsertCel(ctx context.Context, c *callgen.CEL) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO cel (
			event_type, event_time, channel_name, unique_id, linked_id,
			cid_name, cid_num, exten, context, app_data, user_field, call_log_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, string(c.EventType), c.EventTime, c.ChannelName, c.UniqueID, c.LinkedID,
		c.CidName, c.CidNum, c.Exten, c.Context, c.AppData, c.UserField, c.CallLogID,
	).Scan(&id)
	return id, err
}
