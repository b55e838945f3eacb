package hass

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type Config struct {
	Enable          bool          `default:"false"`
	Host            string        `default:"localhost"`
	Port            int           `default:"1883"`
	BaseTopic       string        `default:"physiofit_radar" split_words:"true"`
	DiscoveryPrefix string        `default:"homeassistant" split_words:"true"`
	Timeout         time.Duration `default:"5s"`
	Username        string
	Password        string
}

var topicRegexp = regexp.MustCompile("^[a-z0-9_]+$")

var ErrInvalidTopic = errors.New("invalid topic, can only contain letters, numbers and underscores")

// CheckTopic validates a topic level and returns it in lower case.
func CheckTopic(topic string) (string, error) {
	lower := strings.ToLower(topic)
	if !topicRegexp.MatchString(lower) {
		return "", ErrInvalidTopic
	}

	return lower, nil
}
