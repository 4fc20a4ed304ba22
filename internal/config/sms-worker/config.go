package sms_worker_config

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

type Gateway struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	VerifyTLS bool          `mapstructure:"verify_tls"`
}

func (g *Gateway) AsClientConfig() delivery.SMSGatewayConfig {
	return delivery.SMSGatewayConfig{
		URL:       g.URL,
		APIKey:    g.APIKey,
		Timeout:   g.Timeout,
		VerifyTLS: g.VerifyTLS,
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
	App     App            `mapstructure:"app"`
	DB      pginfra.Config `mapstructure:"db"`
	In      KafkaIn        `mapstructure:"kafka_in"`
	Gateway Gateway        `mapstructure:"sms_gateway"`
	Server  Server         `mapstructure:"server"`
	OTEL    OTEL           `mapstructure:"otel"`
	Log     Log            `mapstructure:"log"`
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
