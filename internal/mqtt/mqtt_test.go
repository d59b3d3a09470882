package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	paho.Token
	done bool
	err  error
}

func (t fakeToken) WaitTimeout(time.Duration) bool { return t.done }

func (t fakeToken) Error() error { return t.err }

type fakePaho struct {
	paho.Client
	token fakeToken
	topic string
}

func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.topic = topic
	return f.token
}

func TestPublishWithTimesOut(t *testing.T) {
	cli := &fakePaho{token: fakeToken{done: false}}
	c := &Client{cli: cli, timeout: 10 * time.Millisecond}

	err := c.PublishWith("brightsky/home/availability", []byte("online"), true)
	if err == nil {
		t.Fatalf("expected timeout error from a stalled broker")
	}
	if cli.topic != "brightsky/home/availability" {
		t.Fatalf("unexpected topic %q", cli.topic)
	}
}

func TestPublishWithReturnsBrokerError(t *testing.T) {
	brokerErr := errors.New("not authorized")
	c := &Client{cli: &fakePaho{token: fakeToken{done: true, err: brokerErr}}, timeout: time.Second}

	if err := c.PublishWith("t", nil, false); !errors.Is(err, brokerErr) {
		t.Fatalf("expected broker error, got %v", err)
	}

	c = &Client{cli: &fakePaho{token: fakeToken{done: true}}, timeout: time.Second}
	if err := c.PublishWith("t", nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
