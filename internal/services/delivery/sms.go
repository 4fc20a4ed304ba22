package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
)

type SMSGatewayConfig struct {
	URL       string
	APIKey    string
	Timeout   time.Duration
	VerifyTLS bool
}

// SMSGateway posts each message to an HTTP SMS provider. An optional
// sender identity is attached as a display-name override when present
// and omitted entirely when absent; no default is substituted.
type SMSGateway struct {
	c   *http.Client
	url string
	key string
	log *zap.Logger
}

type smsSendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	From string `json:"from,omitempty"`
}

type smsSendResponse struct {
	MessageID string `json:"messageId"`
}

func NewSMSGateway(cfg SMSGatewayConfig) *SMSGateway {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &SMSGateway{
		c:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		url: cfg.URL,
		key: cfg.APIKey,
		log: zap.L().With(zap.String("component", "delivery.sms")),
	}
}

func (g *SMSGateway) WithLogger(l *zap.Logger) *SMSGateway {
	if l == nil {
		return g
	}
	cp := *g
	cp.log = l.With(zap.String("component", "delivery.sms"))
	return &cp
}

var _ notification.SMSSender = (*SMSGateway)(nil)

func (g *SMSGateway) Send(ctx context.Context, cfg notification.SMSConfig) (notification.Receipt, error) {
	payload := smsSendRequest{
		To:   cfg.PhoneNumber,
		Text: cfg.Text,
		From: cfg.Sender,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return notification.Receipt{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return notification.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.key != "" {
		req.Header.Set("Authorization", "Bearer "+g.key)
	}

	start := time.Now()
	resp, err := g.c.Do(req)
	if err != nil {
		g.log.Error("sms gateway request failed", zap.Error(err))
		return notification.Receipt{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		g.log.Error("sms gateway rejected send",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return notification.Receipt{}, fmt.Errorf("sms gateway: status %d", resp.StatusCode)
	}

	var out smsSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return notification.Receipt{}, fmt.Errorf("sms gateway: decode response: %w", err)
	}

	g.log.Info("sms sent",
		zap.String("to", cfg.PhoneNumber),
		zap.String("message_id", out.MessageID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return notification.Receipt{MessageID: out.MessageID}, nil
}
