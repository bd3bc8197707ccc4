// Package bus connects to the message broker used both to trigger call
// log generation (LINKEDID_END) and to publish the resulting events.
package bus

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

type Client struct {
	conn mqtt.Client
	log  zerolog.Logger
}

type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Log       zerolog.Logger
}

func Connect(opts Options) (*Client, error) {
	c := &Client{log: opts.Log}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOrderMatters(false).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	c.conn = mqtt.NewClient(clientOpts)
	token := c.conn.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) onConnect(mqtt.Client) {
	c.log.Info().Msg("bus connected")
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.log.Warn().Err(err).Msg("bus connection lost, will auto-reconnect")
}

func (c *Client) Close() {
	c.log.Info().Msg("disconnecting bus client")
	c.conn.Disconnect(1000)
}
