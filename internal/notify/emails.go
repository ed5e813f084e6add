/**
 * @description
 * HTML builders for the notifier's transactional emails. Each builder
 * renders a self-contained inline-styled document in the user's preferred
 * language, matching the portal's branding.
 */

package notify

import (
	"fmt"
	"strings"

	"github.com/euronova/banking-service/internal/domain"
	"github.com/euronova/banking-service/internal/i18n"
)

const brandColor = "#1a3c6e"

func emailShell(lang string, bodyHTML string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(fmt.Sprintf(`<div style="background-color: %s; padding: 20px; text-align: center;">`, brandColor))
	b.WriteString(fmt.Sprintf(`<h1 style="color: #ffffff; margin: 0;">%s</h1>`, i18n.T(lang, "app.name")))
	b.WriteString(fmt.Sprintf(`<p style="color: #c9d6e8; margin: 4px 0 0;">%s</p>`, i18n.T(lang, "app.tagline")))
	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding: 24px; background-color: #f7f9fc;">`)
	b.WriteString(bodyHTML)
	b.WriteString(`</div>`)
	b.WriteString(fmt.Sprintf(`<div style="padding: 12px; text-align: center; color: #8a94a6; font-size: 12px;">%s</div>`, i18n.T(lang, "email.footer")))
	b.WriteString(`</div>`)
	return b.String()
}

func greeting(lang string, user *domain.User) string {
	return fmt.Sprintf(`<p>%s</p>`, i18n.Tf(lang, "email.greeting", user.FirstName, user.LastName))
}

func detailRow(label, value string) string {
	return fmt.Sprintf(`<tr><td style="padding: 6px 12px; color: #55607a;">%s</td><td style="padding: 6px 12px; font-weight: bold;">%s</td></tr>`, label, value)
}

func detailTable(rows ...string) string {
	return fmt.Sprintf(`<table style="width: 100%%; background-color: #ffffff; border-radius: 6px; border-collapse: collapse; margin: 16px 0;">%s</table>`, strings.Join(rows, ""))
}

func renderTransactionEmail(lang string, user *domain.User, tx *domain.Transaction, account *domain.Account) string {
	var b strings.Builder
	b.WriteString(greeting(lang, user))
	b.WriteString(fmt.Sprintf(`<p>%s</p>`, i18n.T(lang, "email.transaction.body")))
	b.WriteString(detailTable(
		detailRow(i18n.T(lang, "email.transaction.type"), tx.Type),
		detailRow(i18n.T(lang, "email.transaction.amount"), tx.Amount.StringFixed(2)+" €"),
	))
	if account != nil {
		b.WriteString(fmt.Sprintf(`<p>%s <strong>%s €</strong>.</p>`,
			i18n.T(lang, "email.transaction.balance"), account.Balance.StringFixed(2)))
	}
	return emailShell(lang, b.String())
}

func renderStepReminderEmail(lang string, user *domain.User, step *domain.VerificationStep, stepNumber int, beneficiary *domain.PaymentAccount) string {
	var b strings.Builder
	b.WriteString(greeting(lang, user))
	b.WriteString(fmt.Sprintf(`<p>%s</p>`, i18n.T(lang, "email.reminder.body")))
	rows := []string{
		detailRow(i18n.T(lang, "email.reminder.step"),
			fmt.Sprintf("%d/%d — %s", stepNumber, domain.NumVerificationStages, i18n.StepName(lang, stepNumber))),
		detailRow(i18n.T(lang, "email.reminder.amount"), step.StepAmount(stepNumber).StringFixed(2)+" €"),
	}
	if beneficiary != nil {
		rows = append(rows,
			detailRow(i18n.T(lang, "email.reminder.beneficiary"), beneficiary.AccountOwner),
			detailRow(i18n.T(lang, "email.reminder.account"), beneficiary.AccountNumber),
		)
	}
	b.WriteString(detailTable(rows...))
	return emailShell(lang, b.String())
}

func renderAccountStatusEmail(lang string, user *domain.User, isActive bool) string {
	key := "email.status.deactivated"
	if isActive {
		key = "email.status.activated"
	}
	var b strings.Builder
	b.WriteString(greeting(lang, user))
	b.WriteString(fmt.Sprintf(`<p>%s</p>`, i18n.T(lang, key)))
	return emailShell(lang, b.String())
}

func renderWelcomeEmail(lang string, user *domain.User, creds domain.WelcomeCredentials) string {
	var b strings.Builder
	b.WriteString(greeting(lang, user))
	b.WriteString(fmt.Sprintf(`<p>%s</p>`, i18n.T(lang, "email.welcome.body")))
	b.WriteString(detailTable(
		detailRow(i18n.T(lang, "email.welcome.clientid"), creds.ClientID),
		detailRow(i18n.T(lang, "email.welcome.account"), creds.AccountNumber),
	))
	b.WriteString(fmt.Sprintf(`<p style="color: #b3261e;">%s</p>`, i18n.T(lang, "email.welcome.warning")))
	return emailShell(lang, b.String())
}
