package bus

import (
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// triggerMessage is the wire shape of a bus trigger: an EventName of
// "LINKEDID_END" names the linked-id whose CELs are now complete and
// ready for fromCel (spec §6).
type triggerMessage struct {
	EventName string `json:"EventName"`
	LinkedID  string `json:"LinkedID"`
}

// TriggerHandler is invoked once per LINKEDID_END trigger received.
type TriggerHandler func(linkedID string)

// SubscribeTriggers subscribes to topic and invokes handler for every
// well-formed LINKEDID_END message. Malformed payloads and other event
// names are logged at debug and ignored.
func (c *Client) SubscribeTriggers(topic string, handler TriggerHandler) error {
	token := c.conn.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		var trigger triggerMessage
		if err := json.Unmarshal(msg.Payload(), &trigger); err != nil {
			c.log.Debug().Err(err).Str("topic", msg.Topic()).Msg("ignoring malformed trigger payload")
			return
		}
		if trigger.EventName != "LINKEDID_END" || trigger.LinkedID == "" {
			c.log.Debug().Str("event_name", trigger.EventName).Msg("ignoring non-trigger bus message")
			return
		}
		handler(trigger.LinkedID)
	})
	token.Wait()
	return token.Error()
}
