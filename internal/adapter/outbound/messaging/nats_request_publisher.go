package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"chatledger/internal/config"
	"chatledger/internal/domain/entity"
	"chatledger/internal/port/outbound"

	"github.com/nats-io/nats.go"
)

const (
	// NATS connection timeout.
	natsConnectionTimeoutSeconds = 5

	// StreamName is the JetStream stream holding request events.
	StreamName = "LEDGER"

	// Request events are kept for 30 days.
	streamMaxAge = 30 * 24 * time.Hour

	maxConsecutiveFailures = 3
	circuitOpenDuration    = 30 * time.Second
)

// ErrCircuitOpen is returned while publishing is suspended after repeated failures.
var ErrCircuitOpen = errors.New("circuit breaker open: too many recent failures")

// RequestEvent is the JSON payload announcing one extracted request.
type RequestEvent struct {
	RequestID     string    `json:"request_id"`
	Timestamp     time.Time `json:"timestamp"`
	Date          string    `json:"date"`
	Month         string    `json:"month"`
	RequestType   string    `json:"request_type"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Urgency       string    `json:"urgency"`
	Effort        string    `json:"effort"`
	MessageLength int       `json:"message_length"`
}

// NewRequestEvent builds the event for request.
func NewRequestEvent(request *entity.Request) RequestEvent {
	return RequestEvent{
		RequestID:     request.ID().String(),
		Timestamp:     request.Timestamp(),
		Date:          request.Date(),
		Month:         request.Month(),
		RequestType:   request.RequestType(),
		Category:      request.Category(),
		Description:   request.Description(),
		Urgency:       request.Urgency().String(),
		Effort:        request.Effort().String(),
		MessageLength: request.MessageLength(),
	}
}

// SubjectFor returns the subject for a category: "<prefix>.<token>", where the token is the
// lowercased category with every run of other characters replaced by one underscore.
func SubjectFor(prefix, category string) string {
	var token strings.Builder
	pendingSeparator := false
	for _, r := range strings.ToLower(category) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSeparator && token.Len() > 0 {
				token.WriteByte('_')
			}
			pendingSeparator = false
			token.WriteRune(r)
			continue
		}
		pendingSeparator = true
	}
	if token.Len() == 0 {
		token.WriteString("uncategorized")
	}
	return prefix + "." + token.String()
}

// jetStreamPublisher is the part of nats.JetStreamContext used for publishing.
type jetStreamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// NATSRequestPublisher provides a NATS JetStream implementation of RequestPublisher.
type NATSRequestPublisher struct {
	config      config.NATSConfig
	conn        *nats.Conn
	js          nats.JetStreamContext
	publisher   jetStreamPublisher
	mutex       sync.RWMutex // Protects instance state
	connectedAt time.Time
	lastError   error
	published   int64
	failed      int64
	lastSent    time.Time
	// Circuit breaker state
	failureCount    int
	lastFailureTime time.Time
}

// NewNATSRequestPublisher creates a new NATS request publisher. Call Connect before publishing.
func NewNATSRequestPublisher(cfg config.NATSConfig) (*NATSRequestPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("NATS URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.URL, "nats://") {
		return nil, errors.New("invalid NATS URL scheme")
	}
	if cfg.SubjectPrefix == "" {
		return nil, errors.New("subject prefix cannot be empty")
	}
	if cfg.MaxReconnects < 0 {
		return nil, errors.New("max reconnects cannot be negative")
	}
	if cfg.ReconnectWait < 0 {
		return nil, errors.New("reconnect wait cannot be negative")
	}

	return &NATSRequestPublisher{config: cfg}, nil
}

// Connect establishes the connection to the NATS server and ensures the stream exists.
func (n *NATSRequestPublisher) Connect() error {
	opts := []nats.Option{
		nats.Name("chatledger"),
		nats.MaxReconnects(n.config.MaxReconnects),
		nats.ReconnectWait(n.config.ReconnectWait),
		nats.Timeout(natsConnectionTimeoutSeconds * time.Second),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			n.setLastError(nil)
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err == nil {
				err = errors.New("connection lost")
			}
			n.setLastError(err)
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.setLastError(err)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		n.setLastError(err)
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	n.mutex.Lock()
	n.conn = conn
	n.js = js
	n.publisher = js
	n.connectedAt = time.Now()
	n.mutex.Unlock()

	if err := n.EnsureStream(); err != nil {
		_ = n.Disconnect()
		return err
	}
	return nil
}

// StreamConfig returns the configuration of the request event stream.
func (n *NATSRequestPublisher) StreamConfig() *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{n.config.SubjectPrefix + ".>"},
		Storage:    nats.FileStorage,
		Retention:  nats.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: 24 * time.Hour,
		Replicas:   1,
	}
}

// EnsureStream creates the JetStream stream if it doesn't exist.
func (n *NATSRequestPublisher) EnsureStream() error {
	n.mutex.RLock()
	js := n.js
	n.mutex.RUnlock()
	if js == nil {
		return errors.New("not connected to NATS server")
	}

	if _, err := js.AddStream(n.StreamConfig()); err != nil {
		if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return nil
		}
		if _, infoErr := js.StreamInfo(StreamName); infoErr == nil {
			return nil
		}
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// Disconnect drains and closes the NATS connection.
func (n *NATSRequestPublisher) Disconnect() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	var err error
	if n.conn != nil {
		err = n.conn.Drain()
		n.conn = nil
	}
	n.js = nil
	n.publisher = nil
	return err
}

// PublishRequests publishes one event per request. The request ID is the JetStream message
// ID, so re-publishing the same request within the duplicate window is ignored by the server.
func (n *NATSRequestPublisher) PublishRequests(ctx context.Context, requests []*entity.Request) error {
	for _, request := range requests {
		if err := n.publishRequest(ctx, request); err != nil {
			return err
		}
	}
	return nil
}

func (n *NATSRequestPublisher) publishRequest(ctx context.Context, request *entity.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if request == nil {
		return errors.New("request cannot be nil")
	}
	if n.isCircuitBreakerOpen() {
		return ErrCircuitOpen
	}

	n.mutex.RLock()
	publisher := n.publisher
	n.mutex.RUnlock()
	if publisher == nil {
		n.recordResult(errors.New("not connected to NATS"))
		return errors.New("publish failed: not connected to NATS")
	}

	data, err := json.Marshal(NewRequestEvent(request))
	if err != nil {
		return fmt.Errorf("failed to marshal request event: %w", err)
	}

	subject := SubjectFor(n.config.SubjectPrefix, request.Category())
	_, err = publisher.Publish(subject, data, nats.MsgId(request.ID().String()), nats.Context(ctx))
	n.recordResult(err)
	if err != nil {
		return fmt.Errorf("failed to publish request %s to %s: %w", request.ID(), subject, err)
	}
	return nil
}

// GetConnectionHealth returns the current connection health status.
func (n *NATSRequestPublisher) GetConnectionHealth() outbound.PublisherHealthStatus {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	connected := n.conn != nil && n.conn.IsConnected()
	status := outbound.PublisherHealthStatus{
		Connected:        connected,
		JetStreamEnabled: n.js != nil,
		Uptime:           "0s",
	}
	if connected {
		status.Uptime = time.Since(n.connectedAt).Truncate(time.Second).String()
	}
	if n.lastError != nil {
		status.LastError = n.lastError.Error()
	}
	return status
}

// GetPublishMetrics returns the publishing counters.
func (n *NATSRequestPublisher) GetPublishMetrics() outbound.PublisherMetrics {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	metrics := outbound.PublisherMetrics{Published: n.published, Failed: n.failed}
	if !n.lastSent.IsZero() {
		metrics.LastSent = n.lastSent.UTC().Format(time.RFC3339)
	}
	return metrics
}

func (n *NATSRequestPublisher) setLastError(err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.lastError = err
}

// recordResult updates the counters and the circuit breaker after one publish attempt.
func (n *NATSRequestPublisher) recordResult(err error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if err == nil {
		n.published++
		n.lastSent = time.Now()
		n.failureCount = 0
		return
	}
	n.failed++
	n.failureCount++
	n.lastFailureTime = time.Now()
	n.lastError = err
}

// isCircuitBreakerOpen reports whether publishing is suspended. The breaker closes again
// once circuitOpenDuration has passed since the last failure.
func (n *NATSRequestPublisher) isCircuitBreakerOpen() bool {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.failureCount >= maxConsecutiveFailures && time.Since(n.lastFailureTime) <= circuitOpenDuration
}

// ResetCircuitBreaker closes the circuit breaker.
func (n *NATSRequestPublisher) ResetCircuitBreaker() {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.failureCount = 0
	n.lastFailureTime = time.Time{}
}
