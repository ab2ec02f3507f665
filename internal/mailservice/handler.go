package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/ashkeyz/inkwell/internal/common"
)

const (
	activationTemplate = "activation_email.html"

	maxSendRetries = 5
	baseSendDelay  = 500 * time.Millisecond
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:     mb,
		m:      NewMailer(host, port, username, password, sender, NewTemplate()),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SendActivationEmail consumes user.created events and delivers the
// activation email for each one. It returns after starting the consumer
// goroutine, which runs until Close is called or the channel closes.
func (s *MailService) SendActivationEmail() {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data struct {
					Name  string
					Email string
					Token string
				}

				if err := json.Unmarshal(msg.Body, &data); err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				payload := struct {
					Name            string
					ActivationToken string
				}{
					Name:            data.Name,
					ActivationToken: data.Token,
				}

				s.sendWithRetry(data.Email, payload)

				// permanently failed deliveries are acked too; a
				// requeue loop would hammer the SMTP host forever
				if err := msg.Ack(false); err != nil {
					s.logger.Error("could not ack message", slog.String("error", err.Error()))
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping activation email consumer")
				return
			}
		}
	}()
}

// sendWithRetry retries failed deliveries with jittered exponential backoff.
func (s *MailService) sendWithRetry(email string, payload any) {
	for attempt := 0; attempt < maxSendRetries; attempt++ {
		err := s.m.send(email, payload, activationTemplate)
		if err == nil {
			s.logger.Info("activation email sent", slog.String("email", email))
			return
		}

		delay := time.Duration(rand.Int63n(int64(baseSendDelay) << uint(attempt)))
		s.logger.Info("retrying activation email", slog.String("email", email), slog.Int("attempt", attempt), slog.Duration("delay", delay))
		time.Sleep(delay)
	}

	s.logger.Error("could not send activation email", slog.String("email", email))
}

func (s *MailService) Close() {
	s.cancel()
}
