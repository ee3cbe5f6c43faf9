package notifier

import (
	"bpm-backend/lib/metrics"
	"bpm-backend/lib/smtp"
	connectionhub "bpm-backend/lib/ws/hub/connection-hub"
	pushdatastore "bpm-backend/lib/ws/push-store"
	"bpm-backend/models"
	dbmodels "bpm-backend/models/db"
	wsmodels "bpm-backend/models/ws"
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

const (
	channelEmail = "email"
	channelWs    = "ws"
)

type Provider interface {
	// Send доставляет события асинхронно, ошибки доставки только логируются
	Send(events ...models.NotifyEvent)
}

var Instance Provider

type Config struct {
	SiteURL            string
	EmailEnabled       bool
	WsEnabled          bool
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
	EmailRatePerSec    float64
}

func NewHandler(cfg Config, mailer smtp.Provider, hub connectionhub.Provider, pushStore pushdatastore.Provider) {
	Instance = NewInstance(cfg, mailer, hub, pushStore)
}

func NewInstance(cfg Config, mailer smtp.Provider, hub connectionhub.Provider, pushStore pushdatastore.Provider) *Notifier {
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	limit := rate.Inf
	if cfg.EmailRatePerSec > 0 {
		limit = rate.Limit(cfg.EmailRatePerSec)
	}
	return &Notifier{
		cfg:       cfg,
		mailer:    mailer,
		hub:       hub,
		pushStore: pushStore,
		limiter:   rate.NewLimiter(limit, 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "smtp",
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.WithField("breaker", name).
					WithField("from", from.String()).
					WithField("to", to.String()).
					Warn("изменилось состояние отправки почты")
			},
		}),
	}
}

type Notifier struct {
	cfg       Config
	mailer    smtp.Provider
	hub       connectionhub.Provider
	pushStore pushdatastore.Provider
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker
	wg        sync.WaitGroup
}

func (n *Notifier) Send(events ...models.NotifyEvent) {
	for _, event := range events {
		if len(event.Recipients) == 0 {
			continue
		}
		n.wg.Add(1)
		go func(event models.NotifyEvent) {
			defer n.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("event", event.Kind).
						WithField("stack", string(debug.Stack())).
						Errorf("паника при отправке уведомления: %v", r)
				}
			}()
			n.Deliver(event)
		}(event)
	}
}

// Wait ожидает завершения начатых отправок
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Deliver синхронная доставка события по всем включенным каналам
func (n *Notifier) Deliver(event models.NotifyEvent) {
	logger := log.
		WithField("event", event.Kind).
		WithField("instance_id", event.InstanceID)
	for _, recipient := range event.Recipients {
		if n.cfg.WsEnabled && n.hub != nil {
			err := n.sendPush(event, recipient)
			metrics.Notification(channelWs, err)
			if err != nil {
				logger.WithField("user_id", recipient.UserID).WithError(err).Error("ошибка отправки уведомления в приложение")
			}
		}
		if n.cfg.EmailEnabled && n.mailer != nil && recipient.Email != "" {
			err := n.sendEmail(event, recipient)
			metrics.Notification(channelEmail, err)
			if err != nil {
				logger.WithField("user_id", recipient.UserID).WithError(err).Error("ошибка отправки письма")
			}
		}
	}
}

func (n *Notifier) sendEmail(event models.NotifyEvent, recipient models.NotifyRecipient) error {
	if !n.mailer.IsConfigured() {
		return nil
	}
	email, err := BuildEmail(event, recipient, n.cfg.SiteURL)
	if err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.mailer.From())
	msg.SetAddressHeader("To", recipient.Email, recipient.Name)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)

	err = n.limiter.Wait(context.Background())
	if err != nil {
		return errors.Wrap(err, "ошибка ограничения частоты отправки")
	}
	_, err = n.breaker.Execute(func() (interface{}, error) {
		return nil, n.mailer.Send([]string{recipient.Email}, msg)
	})
	return err
}

func (n *Notifier) sendPush(event models.NotifyEvent, recipient models.NotifyRecipient) error {
	title, text := PushText(event)
	if n.hub.IsConnected(recipient.UserID) {
		n.hub.SendMessage(wsmodels.ServerMessage{
			ToUserID: recipient.UserID,
			Time:     time.Now().Format("02.01.2006 15:04:05"),
			Code:     string(event.Kind),
			Title:    title,
			Msg:      text,
		})
		return nil
	}
	if n.pushStore == nil {
		return nil
	}
	return n.pushStore.Create(dbmodels.PushData{
		UserID: recipient.UserID,
		Code:   event.Kind,
		Title:  title,
		Msg:    text,
	})
}
