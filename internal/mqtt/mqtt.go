package mqtt

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Client wraps a paho client connection.
type Client struct {
	cli     paho.Client
	timeout time.Duration
}

// DefaultPublishTimeout bounds how long a publish waits for the broker.
const DefaultPublishTimeout = 5 * time.Second

// ClientAPI is the minimal surface the publisher needs.
// It enables unit testing without requiring a live broker.
type ClientAPI interface {
	PublishWith(topic string, payload []byte, retain bool) error
}

// New connects to brokerURL (mqtt://, tcp://, ssl://, tls://, ws:// or wss://).
// When willTopic is set, the broker publishes "offline" there if the
// connection drops.
func New(brokerURL, willTopic string) (*Client, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("parse broker url: %w", err)
	}
	opts := paho.NewClientOptions()
	server := u.Host
	switch u.Scheme {
	case "mqtt", "tcp":
		server = "tcp://" + server
	case "ssl", "tls":
		server = "ssl://" + server
	case "ws", "wss":
		server = u.Scheme + "://" + server + u.Path
	default:
		return nil, fmt.Errorf("unsupported broker scheme %q", u.Scheme)
	}
	opts.AddBroker(server)
	opts.SetClientID("brightsky-" + uuid.NewString()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(c paho.Client) { slog.Info("mqtt connected", "broker", u.Redacted()) }
	opts.OnConnectionLost = func(c paho.Client, err error) { slog.Error("mqtt connection lost", "error", err) }
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}
	if u.Scheme == "ssl" || u.Scheme == "tls" || u.Scheme == "wss" {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	if willTopic != "" {
		opts.SetWill(willTopic, AvailabilityOffline, 0, true)
	}

	cli := paho.NewClient(opts)
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		return nil, fmt.Errorf("connect %s: %w", u.Redacted(), t.Error())
	}
	return &Client{cli: cli, timeout: DefaultPublishTimeout}, nil
}

// PublishWith publishes at QoS 0 and gives up after the publish timeout.
func (c *Client) PublishWith(topic string, payload []byte, retain bool) error {
	t := c.cli.Publish(topic, 0, retain, payload)
	if !t.WaitTimeout(c.timeout) {
		return fmt.Errorf("publish %s: timed out after %s", topic, c.timeout)
	}
	return t.Error()
}

// Close disconnects, waiting up to 250ms for in-flight work.
func (c *Client) Close() {
	c.cli.Disconnect(250)
}
