package kafka

import (
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

// producerCarrier collects trace context on the way out; headers turns
// it into the wire form the writer expects.
type producerCarrier map[string]string

var _ propagation.TextMapCarrier = producerCarrier{}

func (c producerCarrier) Get(key string) string { return c[key] }
func (c producerCarrier) Set(key, val string)   { c[key] = val }

func (c producerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

func (c producerCarrier) headers() []kafka.Header {
	hs := make([]kafka.Header, 0, len(c))
	for k, v := range c {
		hs = append(hs, kafka.Header{Key: k, Value: []byte(v)})
	}
	return hs
}

// consumerCarrier reads trace context straight off a fetched message's
// headers, no intermediate map.
type consumerCarrier []kafka.Header

var _ propagation.TextMapCarrier = consumerCarrier(nil)

func (c consumerCarrier) Get(key string) string {
	for i := range c {
		if c[i].Key == key {
			return string(c[i].Value)
		}
	}
	return ""
}

// Set is a no-op: inbound headers are read-only here.
func (c consumerCarrier) Set(string, string) {}

func (c consumerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for i := range c {
		keys = append(keys, c[i].Key)
	}
	return keys
}
