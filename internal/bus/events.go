package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wazo-platform/call-logd/internal/callgen"
)

// callLogCreatedPayload is the aggregate event published once per
// generated call log. It carries tags — the union of every
// participant's tags — unlike the per-user event below (spec §6, §9).
type callLogCreatedPayload struct {
	ID               int64     `json:"id"`
	TenantUUID       string    `json:"tenant_uuid"`
	Date             time.Time `json:"date"`
	Direction        string    `json:"direction"`
	SourceName       string    `json:"source_name"`
	SourceExten      string    `json:"source_exten"`
	DestinationName  string    `json:"destination_name"`
	DestinationExten string    `json:"destination_exten"`
	Tags             []string  `json:"tags"`
}

// callLogUserCreatedPayload is published once per participant. It must
// never carry a "tags" key — this is a compatibility requirement
// consumers rely on, not an oversight.
type callLogUserCreatedPayload struct {
	ID         int64  `json:"id"`
	TenantUUID string `json:"tenant_uuid"`
	UserUUID   string `json:"user_uuid"`
	Role       string `json:"role"`
	Answered   bool   `json:"answered"`
}

// userEvent pairs one per-user payload with its topic and required ACL.
type userEvent struct {
	topic   string
	acl     string
	payload callLogUserCreatedPayload
}

// buildCallLogCreatedEvents derives the aggregate and per-user payloads
// for a generated call log. Split out from PublishCallLogCreated so the
// event shapes can be verified without a live broker connection.
func buildCallLogCreatedEvents(id int64, cl *callgen.CallLog) (callLogCreatedPayload, []userEvent) {
	tagSet := map[string]struct{}{}
	var tags []string
	for _, p := range cl.Participants {
		for _, tag := range p.Tags {
			if _, seen := tagSet[tag]; seen {
				continue
			}
			tagSet[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	aggregate := callLogCreatedPayload{
		ID:               id,
		TenantUUID:       cl.TenantUUID,
		Date:             cl.Date,
		Direction:        string(cl.Direction),
		SourceName:       cl.SourceName,
		SourceExten:      cl.SourceExten,
		DestinationName:  cl.DestinationName,
		DestinationExten: cl.DestinationExten,
		Tags:             tags,
	}

	events := make([]userEvent, 0, len(cl.Participants))
	for _, p := range cl.Participants {
		events = append(events, userEvent{
			topic: fmt.Sprintf("call_log.user.%s.created", p.UserUUID),
			acl:   fmt.Sprintf("events.call_log.user.%s.created", p.UserUUID),
			payload: callLogUserCreatedPayload{
				ID:         id,
				TenantUUID: cl.TenantUUID,
				UserUUID:   p.UserUUID,
				Role:       string(p.Role),
				Answered:   p.Answered,
			},
		})
	}

	return aggregate, events
}

// PublishCallLogCreated publishes the aggregate call_log_created event
// and one call_log_user_created event per participant.
func (c *Client) PublishCallLogCreated(ctx context.Context, id int64, cl *callgen.CallLog) error {
	aggregate, userEvents := buildCallLogCreatedEvents(id, cl)

	if err := c.publish("call_log_created", "events.call_log.created", aggregate); err != nil {
		return err
	}
	for _, e := range userEvents {
		if err := c.publish(e.topic, e.acl, e.payload); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) publish(topic, acl string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.log.Debug().Str("topic", topic).Str("required_acl", acl).Msg("publishing bus event")
	token := c.conn.Publish(topic, 1, false, body)
	token.Wait()
	return token.Error()
}
