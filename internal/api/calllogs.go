package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wazo-platform/call-logd/internal/recording"
	"github.com/wazo-platform/call-logd/internal/store"
)

// CallLogsHandler serves the read-only call log export surface; call-logd
// itself only ever writes call logs from fromCel, never from HTTP.
type CallLogsHandler struct {
	db         *store.DB
	recordings recording.Store
	log        zerolog.Logger
}

func NewCallLogsHandler(db *store.DB, recordings recording.Store, log zerolog.Logger) *CallLogsHandler {
	return &CallLogsHandler{db: db, recordings: recordings, log: log}
}

type callLogResponse struct {
	ID               int64                    `json:"id"`
	Date             string                   `json:"date"`
	Direction        string                   `json:"direction"`
	TenantUUID       string                   `json:"tenant_uuid"`
	SourceName       string                   `json:"source_name"`
	SourceExten      string                   `json:"source_exten"`
	DestinationName  string                   `json:"destination_name"`
	DestinationExten string                   `json:"destination_exten"`
	Participants     []callLogParticipantView `json:"participants"`
	Recordings       []callLogRecordingView   `json:"recordings"`
}

type callLogParticipantView struct {
	UserUUID string   `json:"user_uuid"`
	Role     string   `json:"role"`
	Tags     []string `json:"tags"`
	Answered bool     `json:"answered"`
}

type callLogRecordingView struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	URL       string `json:"url,omitempty"`
}

func (h *CallLogsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := ParsePagination(r)
	from, _ := QueryTime(r, "from")
	until, _ := QueryTime(r, "until")

	records, err := h.db.ListCallLogs(r.Context(), store.ListFilter{
		TenantUUID: r.URL.Query().Get("tenant_uuid"),
		From:       from,
		Until:      until,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to list call logs")
		return
	}

	items := make([]callLogResponse, 0, len(records))
	for _, rec := range records {
		participants := make([]callLogParticipantView, 0, len(rec.Participants))
		for _, p := range rec.Participants {
			participants = append(participants, callLogParticipantView{
				UserUUID: p.UserUUID,
				Role:     string(p.Role),
				Tags:     p.Tags,
				Answered: p.Answered,
			})
		}

		recordings := make([]callLogRecordingView, 0, len(rec.Recordings))
		for _, rrec := range rec.Recordings {
			view := callLogRecordingView{}
			if rrec.StartTime != nil {
				view.StartTime = rrec.StartTime.Format("2006-01-02T15:04:05.000Z0700")
			}
			if rrec.EndTime != nil {
				view.EndTime = rrec.EndTime.Format("2006-01-02T15:04:05.000Z0700")
			}
			if h.recordings != nil {
				if url, err := h.recordings.URL(r.Context(), rrec.Path); err != nil {
					h.log.Warn().Err(err).Str("path", rrec.Path).Msg("failed to resolve recording url")
				} else {
					view.URL = url
				}
			}
			recordings = append(recordings, view)
		}

		items = append(items, callLogResponse{
			ID:               rec.ID,
			Date:             rec.Date.Format("2006-01-02T15:04:05.000Z0700"),
			Direction:        string(rec.Direction),
			TenantUUID:       rec.TenantUUID,
			SourceName:       rec.SourceName,
			SourceExten:      rec.SourceExten,
			DestinationName:  rec.DestinationName,
			DestinationExten: rec.DestinationExten,
			Participants:     participants,
			Recordings:       recordings,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}
