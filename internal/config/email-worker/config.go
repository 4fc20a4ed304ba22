package email_worker_config

import (
	"time"

	"github.com/notifyhub/herald/internal/obs"
	kafkax "github.com/notifyhub/herald/internal/repository/kafka"
	pginfra "github.com/notifyhub/herald/internal/repository/postgres"
	"github.com/notifyhub/herald/internal/services/delivery"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

// KafkaIn spells out the retry contract with the transport: a job is
// attempted max_attempts times, then parked on dead_letter_topic.
type KafkaIn struct {
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	GroupID         string   `mapstructure:"group_id"`
	MaxAttempts     int      `mapstructure:"max_attempts"`
	DeadLetterTopic string   `mapstructure:"dead_letter_topic"`
}

func (k *KafkaIn) AsConsumerConfig() *kafkax.ConsumerConfig {
	return &kafkax.ConsumerConfig{
		Brokers:         k.Brokers,
		GroupID:         k.GroupID,
		Topic:           k.Topic,
		MaxAttempts:     k.MaxAttempts,
		DeadLetterTopic: k.DeadLetterTopic,
	}
}

type SMTP struct {
	Addr     string        `mapstructure:"addr"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (s *SMTP) AsMailerConfig() delivery.SMTPConfig {
	return delivery.SMTPConfig{
		Addr:     s.Addr,
		User:     s.User,
		Password: s.Password,
		UseTLS:   s.UseTLS,
		Timeout:  s.Timeout,
	}
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	App    App            `mapstructure:"app"`
	DB     pginfra.Config `mapstructure:"db"`
	In     KafkaIn        `mapstructure:"kafka_in"`
	SMTP   SMTP           `mapstructure:"smtp"`
	Server Server         `mapstructure:"server"`
	OTEL   OTEL           `mapstructure:"otel"`
	Log    Log            `mapstructure:"log"`
}

func (c *Config) AsLoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}
