/**
 * @description
 * This package implements the best-effort notifier: the single place where a
 * domain state change fans out into an in-app notification row, a broker
 * event, and a localized email. Every delivery failure here is logged and
 * swallowed: a notification must never reject or roll back the state change
 * that triggered it.
 *
 * @dependencies
 * - context, log: Standard Go libraries.
 * - internal/domain, internal/store, internal/i18n: Models, persistence, messages.
 * - pkg/brevoclient, pkg/rabbitmq: Email transport and event broker.
 */

package notify

import (
	"context"
	"log"
	"time"

	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/i18n"
	"github.com/euronova/banking-service/internal/store"
	"github.com/euronova/banking-service/pkg/rabbitmq"
)

// Mailer is the transport the notifier dispatches emails through.
// *brevoclient.Client satisfies it.
type Mailer interface {
	SendEmail(ctx context.Context, toEmail, toName, subject, htmlContent string) (string, error)
}

// Notifier is what the application layer sees. Notify is fire-and-forget;
// the email methods report delivery as a boolean so callers can proceed
// regardless of the outcome.
type Notifier interface {
	Notify(ctx context.Context, userID int64, typ, title, message string, metadata map[string]interface{})
	SendTransactionEmail(ctx context.Context, user *domain.User, tx *domain.Transaction, account *domain.Account) bool
	SendStepReminderEmail(ctx context.Context, user *domain.User, step *domain.VerificationStep, stepNumber int, beneficiary *domain.PaymentAccount) bool
	SendAccountStatusEmail(ctx context.Context, user *domain.User, isActive bool) bool
	SendWelcomeEmail(ctx context.Context, user *domain.User, creds domain.WelcomeCredentials) bool
}

// Service is the production Notifier. A nil mailer or producer disables that
// channel; the in-app notification row is always written.
type Service struct {
	repo     store.Repository
	mailer   Mailer
	producer rabbitmq.Publisher
}

// NewService creates a notifier backed by the given store, mailer, and
// event producer.
func NewService(repo store.Repository, mailer Mailer, producer rabbitmq.Publisher) *Service {
	return &Service{repo: repo, mailer: mailer, producer: producer}
}

// Notify records an in-app notification and publishes the matching broker
// event. Failures are logged, never returned.
func (s *Service) Notify(ctx context.Context, userID int64, typ, title, message string, metadata map[string]interface{}) {
	_, err := s.repo.CreateNotification(ctx, &domain.Notification{
		UserID:   userID,
		Type:     typ,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	})
	if err != nil {
		log.Printf("level=error component=notifier msg=\"in-app notification write failed\" user_id=%d type=%s err=%v", userID, typ, err)
	}

	if s.producer == nil {
		return
	}
	event := rabbitmq.NotificationEvent{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
	if err := s.producer.Publish(ctx, rabbitmq.EventsExchange, routingKeyForType(typ), event); err != nil {
		log.Printf("level=warn component=notifier msg=\"event publish failed\" user_id=%d type=%s err=%v", userID, typ, err)
	}
}

func routingKeyForType(typ string) string {
	switch typ {
	case domain.NotificationTypeTransaction:
		return rabbitmq.RoutingKeyTransactionPosted
	case domain.NotificationTypeVerification:
		return rabbitmq.RoutingKeyStepValidated
	case domain.NotificationTypeStatus:
		return rabbitmq.RoutingKeyAccountStatus
	default:
		return "notification." + typ
	}
}

// sendEmail dispatches through the mailer, logging instead of propagating
// failures. Returns whether delivery was handed off successfully.
func (s *Service) sendEmail(ctx context.Context, user *domain.User, subject, html string) bool {
	if s.mailer == nil {
		log.Printf("level=warn component=notifier msg=\"mailer not configured; email skipped\" user_id=%d subject=%q", user.ID, subject)
		return false
	}
	name := user.FirstName + " " + user.LastName
	if _, err := s.mailer.SendEmail(ctx, user.Email, name, subject, html); err != nil {
		log.Printf("level=warn component=notifier msg=\"email delivery failed\" user_id=%d subject=%q err=%v", user.ID, subject, err)
		return false
	}
	return true
}

// SendTransactionEmail notifies an account owner about a posted transaction.
func (s *Service) SendTransactionEmail(ctx context.Context, user *domain.User, tx *domain.Transaction, account *domain.Account) bool {
	lang := userLanguage(user)
	subject := i18n.T(lang, "email.transaction.subject")
	return s.sendEmail(ctx, user, subject, renderTransactionEmail(lang, user, tx, account))
}

// SendStepReminderEmail reminds a client that the given verification stage's
// fee is due, including the beneficiary details when configured.
func (s *Service) SendStepReminderEmail(ctx context.Context, user *domain.User, step *domain.VerificationStep, stepNumber int, beneficiary *domain.PaymentAccount) bool {
	lang := userLanguage(user)
	subject := i18n.T(lang, "email.reminder.subject")
	return s.sendEmail(ctx, user, subject, renderStepReminderEmail(lang, user, step, stepNumber, beneficiary))
}

// SendAccountStatusEmail informs a user their account was (de)activated.
func (s *Service) SendAccountStatusEmail(ctx context.Context, user *domain.User, isActive bool) bool {
	lang := userLanguage(user)
	subject := i18n.T(lang, "email.status.subject")
	return s.sendEmail(ctx, user, subject, renderAccountStatusEmail(lang, user, isActive))
}

// SendWelcomeEmail delivers the client's credentials after account opening.
func (s *Service) SendWelcomeEmail(ctx context.Context, user *domain.User, creds domain.WelcomeCredentials) bool {
	lang := userLanguage(user)
	subject := i18n.T(lang, "email.welcome.subject")
	return s.sendEmail(ctx, user, subject, renderWelcomeEmail(lang, user, creds))
}

func userLanguage(user *domain.User) string {
	if user.Language != "" {
		return user.Language
	}
	return i18n.DefaultLanguage
}
