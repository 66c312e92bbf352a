package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/davidus-sk/Yaesu-Pi/cat"
)

const envPrefix = "yaesu"

// envDefaults holds the flag defaults that can be overridden from the
// environment, e.g. YAESU_DEVICE=/dev/ttyAMA0 YAESU_REPLY_TIMEOUT=1s.
type envDefaults struct {
	Device       string        `default:"/dev/ttyUSB0"`
	Baud         int           `default:"9600"`
	ReplyTimeout time.Duration `split_words:"true"`
}

func loadEnvDefaults() (envDefaults, error) {
	var c envDefaults
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return c, err
	}
	if c.ReplyTimeout <= 0 {
		c.ReplyTimeout = cat.DefaultReplyTimeout
	}
	return c, nil
}
