package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/store"
)

type failingMailer struct{}

func (failingMailer) SendEmail(ctx context.Context, toEmail, toName, subject, htmlContent string) (string, error) {
	return "", errors.New("smtp relay unavailable")
}

type capturingMailer struct {
	subjects []string
	html     []string
}

func (m *capturingMailer) SendEmail(ctx context.Context, toEmail, toName, subject, htmlContent string) (string, error) {
	m.subjects = append(m.subjects, subject)
	m.html = append(m.html, htmlContent)
	return "msg-1", nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return errors.New("broker unreachable")
}

func (failingPublisher) Close() {}

func seedUser(t *testing.T, repo store.Repository, lang string) *domain.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), &domain.User{
		Username:  "client1",
		Email:     "client1@example.com",
		FirstName: "Jean",
		LastName:  "Dupont",
		Role:      domain.RoleClient,
		Language:  lang,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return user
}

func TestNotifyWritesRowDespitePublishFailure(t *testing.T) {
	repo := store.NewMemoryRepository()
	user := seedUser(t, repo, "fr")
	svc := NewService(repo, nil, failingPublisher{})

	svc.Notify(context.Background(), user.ID, domain.NotificationTypeStatus, "Titre", "Message", nil)

	items, err := repo.GetNotificationsByUserID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetNotificationsByUserID returned error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Titre" {
		t.Fatalf("expected the in-app row despite publish failure, got %+v", items)
	}
}

func TestEmailFailureIsSwallowed(t *testing.T) {
	repo := store.NewMemoryRepository()
	user := seedUser(t, repo, "fr")
	svc := NewService(repo, failingMailer{}, nil)

	if sent := svc.SendAccountStatusEmail(context.Background(), user, true); sent {
		t.Fatal("expected false when the mailer fails")
	}
}

func TestNilMailerSkipsDelivery(t *testing.T) {
	repo := store.NewMemoryRepository()
	user := seedUser(t, repo, "fr")
	svc := NewService(repo, nil, nil)

	if sent := svc.SendWelcomeEmail(context.Background(), user, domain.WelcomeCredentials{ClientID: "client1"}); sent {
		t.Fatal("expected false when no mailer is configured")
	}
}

func TestEmailsFollowUserLanguage(t *testing.T) {
	repo := store.NewMemoryRepository()
	mailer := &capturingMailer{}
	svc := NewService(repo, mailer, nil)

	fr := seedUser(t, repo, "fr")
	if sent := svc.SendAccountStatusEmail(context.Background(), fr, true); !sent {
		t.Fatal("expected delivery to succeed")
	}

	en := seedUser(t, repo, "en")
	if sent := svc.SendAccountStatusEmail(context.Background(), en, true); !sent {
		t.Fatal("expected delivery to succeed")
	}

	if mailer.subjects[0] != "Mise à jour du statut de votre compte" {
		t.Fatalf("expected French subject, got %q", mailer.subjects[0])
	}
	if mailer.subjects[1] != "Account status update" {
		t.Fatalf("expected English subject, got %q", mailer.subjects[1])
	}
}

func TestReminderEmailIncludesBeneficiary(t *testing.T) {
	repo := store.NewMemoryRepository()
	mailer := &capturingMailer{}
	svc := NewService(repo, mailer, nil)
	user := seedUser(t, repo, "fr")

	rec := domain.NewVerificationStep(user.ID)
	beneficiary := &domain.PaymentAccount{
		StepNumber:    1,
		AccountOwner:  "EuroNova SA",
		AccountNumber: "FR76 0000 1111 2222 3333 444",
	}

	if sent := svc.SendStepReminderEmail(context.Background(), user, rec, 1, beneficiary); !sent {
		t.Fatal("expected delivery to succeed")
	}
	body := mailer.html[0]
	for _, want := range []string{"EuroNova SA", "FR76 0000 1111 2222 3333 444", "75.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected reminder body to contain %q", want)
		}
	}
}
