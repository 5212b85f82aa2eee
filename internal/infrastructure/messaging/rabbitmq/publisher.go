package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/bridge-auth/internal/application/auth"
)

const (
	DefaultExchange = "notify.events"

	RoutingKeyEmail = "notify.email.requested"
	RoutingKeySMS   = "notify.sms.requested"

	// Window to wait for a Return or Confirm after publishing.
	publishWait = 2 * time.Second
)

// EmailMessage is the payload consumed by the email delivery worker.
type EmailMessage struct {
	MessageID string    `json:"message_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	CreatedAt time.Time `json:"created_at"`
}

// SMSMessage is the payload consumed by the SMS delivery worker.
type SMSMessage struct {
	MessageID string    `json:"message_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Config struct {
	URL       string
	Exchange  string
	EmailFrom string
	SMSFrom   string
}

// Publisher hands notifications to delivery workers over a topic exchange,
// with publisher confirms and mandatory routing.
type Publisher struct {
	url       string
	exchange  string
	emailFrom string
	smsFrom   string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return

	// publish sends one JSON body; replaced in tests.
	publish func(ctx context.Context, routingKey string, body []byte) error
	now     func() time.Time
}

var (
	_ auth.EmailSender = (*Publisher)(nil)
	_ auth.SMSSender   = (*Publisher)(nil)
)

func NewPublisher(cfg Config) (*Publisher, error) {
	p := newPublisher(cfg)
	p.mu.Lock()
	err := p.connect()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisher(cfg Config) *Publisher {
	ex := cfg.Exchange
	if ex == "" {
		ex = DefaultExchange
	}
	p := &Publisher{
		url:       cfg.URL,
		exchange:  ex,
		emailFrom: cfg.EmailFrom,
		smsFrom:   cfg.SMSFrom,
		now:       time.Now,
	}
	p.publish = p.publishConfirmed
	return p
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetConn()
	return nil
}

// ---- auth.EmailSender / auth.SMSSender ----

func (p *Publisher) SendEmail(ctx context.Context, to, subject, html string) error {
	return p.publishJSON(ctx, RoutingKeyEmail, EmailMessage{
		MessageID: uuid.NewString(),
		From:      p.emailFrom,
		To:        to,
		Subject:   subject,
		HTML:      html,
		CreatedAt: p.now().UTC(),
	})
}

func (p *Publisher) SendSMS(ctx context.Context, to, body string) error {
	return p.publishJSON(ctx, RoutingKeySMS, SMSMessage{
		MessageID: uuid.NewString(),
		From:      p.smsFrom,
		To:        to,
		Body:      body,
		CreatedAt: p.now().UTC(),
	})
}

// ---- internal ----

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.publish(ctx, routingKey, body)
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// idempotent
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publishConfirmed(ctx context.Context, routingKey string, body []byte) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishWait)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// drop stale confirms/returns from an earlier timed-out publish
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    p.now(),
			Body:         body,
		},
	); err != nil {
		p.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	// The broker sends basic.return before basic.ack for an unroutable
	// mandatory message, so a Return seen first wins.
	select {
	case ret := <-p.returnCh:
		return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)

	case conf := <-p.confirmCh:
		select {
		case ret := <-p.returnCh:
			return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
		default:
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq publish: key=%s: %w", routingKey, ctx.Err())
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
