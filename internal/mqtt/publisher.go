package mqtt

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/i474232898/brightsky-weather/internal/weather"
)

const (
	AvailabilityOnline  = "online"
	AvailabilityOffline = "offline"
)

// Publisher mirrors coordinator updates to retained MQTT topics:
//
//	<prefix>/<name>/availability
//	<prefix>/<name>/condition
//	<prefix>/<name>/sensor/<key>/state
type Publisher struct {
	client ClientAPI
	base   string
	logger *slog.Logger
}

// NewPublisher creates a Publisher. name is slugified for the topic.
func NewPublisher(client ClientAPI, prefix, name string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		base:   baseTopic(prefix, name),
		logger: logger,
	}
}

func baseTopic(prefix, name string) string {
	return strings.Trim(prefix, "/") + "/" + Slug(name)
}

// AvailabilityTopic is where online/offline is published.
func (p *Publisher) AvailabilityTopic() string {
	return p.base + "/availability"
}

// AvailabilityTopicFor returns the availability topic a Publisher built from
// prefix and name would use. The connection's last will goes there.
func AvailabilityTopicFor(prefix, name string) string {
	return baseTopic(prefix, name) + "/availability"
}

// Handle publishes one coordinator update. It is meant to be passed to
// Coordinator.Subscribe.
func (p *Publisher) Handle(u weather.Update) {
	var current *weather.Record
	if u.HasData {
		current = u.Snapshot.Current
	}

	availability := AvailabilityOnline
	if u.Err != nil || current == nil {
		availability = AvailabilityOffline
	}
	p.publish(p.AvailabilityTopic(), availability)

	if u.Err != nil {
		return
	}

	condition, ok := weather.PresentCondition(current)
	if !ok {
		p.logger.Warn("no condition or icon in current weather, reporting sunny")
	}
	p.publish(p.base+"/condition", condition)

	for _, s := range weather.Sensors(current) {
		p.publish(p.base+"/sensor/"+s.Key+"/state", s.State())
	}
}

func (p *Publisher) publish(topic, payload string) {
	if err := p.client.PublishWith(topic, []byte(payload), true); err != nil {
		p.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}

// Slug lowercases s and replaces runs of non-alphanumerics with "_".
func Slug(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
