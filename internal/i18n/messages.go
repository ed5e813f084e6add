/**
 * @description
 * Message catalog for user-facing notification and email text. French is the
 * portal's default language; English is the fallback set. Lookups for an
 * unknown language fall back to French, and unknown keys return the key
 * itself so a missing translation is visible rather than silent.
 */

package i18n

import "fmt"

// DefaultLanguage is used when a user has no language preference.
const DefaultLanguage = "fr"

var messages = map[string]map[string]string{
	"fr": {
		"app.name":    "EuroNova",
		"app.tagline": "Votre partenaire bancaire",

		"step.name.1": "Frais d'enregistrement de crédit",
		"step.name.2": "Frais de virement international",
		"step.name.3": "Frais de justice",
		"step.name.4": "Frais d'assurance",
		"step.name.5": "Frais d'autorisation de décaissement",

		"step.validated.title":   "Étape %d validée",
		"step.validated.message": "L'étape \"%s\" a été validée.",
		"step.cancelled.title":   "Étape %d annulée",
		"step.cancelled.message": "La validation de l'étape \"%s\" a été annulée.",

		"transaction.credit.title":   "Crédit de %s€",
		"transaction.debit.title":    "Débit de %s€",
		"transaction.no.description": "Aucune description",

		"deposit.initial.title":       "Dépôt initial effectué",
		"deposit.initial.message":     "Un dépôt initial de %s€ a été effectué sur votre compte.",
		"deposit.initial.description": "Dépôt initial",

		"status.activated.title":     "Compte activé",
		"status.activated.message":   "Votre compte a été activé.",
		"status.deactivated.title":   "Compte désactivé",
		"status.deactivated.message": "Votre compte a été désactivé.",

		"email.greeting":             "Cher(e) %s %s,",
		"email.footer":               "Ce message est automatique, merci de ne pas y répondre.",
		"email.transaction.subject":  "Notification de transaction",
		"email.transaction.body":     "Nous vous informons qu'une transaction a été effectuée sur votre compte.",
		"email.transaction.type":     "Type",
		"email.transaction.amount":   "Montant",
		"email.transaction.balance":  "Votre solde actuel est de",
		"email.reminder.subject":     "Rappel de paiement",
		"email.reminder.body":        "Un paiement est requis pour avancer dans votre processus de vérification.",
		"email.reminder.step":        "Étape actuelle",
		"email.reminder.amount":      "Montant dû",
		"email.reminder.beneficiary": "Nom du bénéficiaire",
		"email.reminder.account":     "Numéro de compte",
		"email.status.subject":       "Mise à jour du statut de votre compte",
		"email.status.activated":     "Nous avons le plaisir de vous informer que votre compte a été activé.",
		"email.status.deactivated":   "Nous sommes au regret de vous informer que votre compte a été désactivé. Veuillez contacter notre service client pour plus d'informations.",
		"email.welcome.subject":      "Bienvenue chez EuroNova",
		"email.welcome.body":         "Votre compte a été créé avec succès ! Voici vos informations d'identification :",
		"email.welcome.clientid":     "ID Client",
		"email.welcome.account":      "RIB",
		"email.welcome.warning":      "Conservez ces informations précieusement et ne les partagez avec personne.",
	},
	"en": {
		"app.name":    "EuroNova",
		"app.tagline": "Your banking partner",

		"step.name.1": "Credit registration fee",
		"step.name.2": "International transfer fee",
		"step.name.3": "Legal fee",
		"step.name.4": "Insurance fee",
		"step.name.5": "Disbursement authorization fee",

		"step.validated.title":   "Step %d validated",
		"step.validated.message": "The step \"%s\" has been validated.",
		"step.cancelled.title":   "Step %d cancelled",
		"step.cancelled.message": "The validation of step \"%s\" has been cancelled.",

		"transaction.credit.title":   "Credit of %s€",
		"transaction.debit.title":    "Debit of %s€",
		"transaction.no.description": "No description",

		"deposit.initial.title":       "Initial deposit completed",
		"deposit.initial.message":     "An initial deposit of %s€ has been made to your account.",
		"deposit.initial.description": "Initial deposit",

		"status.activated.title":     "Account activated",
		"status.activated.message":   "Your account has been activated.",
		"status.deactivated.title":   "Account deactivated",
		"status.deactivated.message": "Your account has been deactivated.",

		"email.greeting":             "Dear %s %s,",
		"email.footer":               "This is an automated message, please do not reply.",
		"email.transaction.subject":  "Transaction notification",
		"email.transaction.body":     "We inform you that a transaction has been made on your account.",
		"email.transaction.type":     "Type",
		"email.transaction.amount":   "Amount",
		"email.transaction.balance":  "Your current balance is",
		"email.reminder.subject":     "Payment reminder",
		"email.reminder.body":        "A payment is required to proceed with your verification process.",
		"email.reminder.step":        "Current step",
		"email.reminder.amount":      "Amount due",
		"email.reminder.beneficiary": "Beneficiary name",
		"email.reminder.account":     "Account number",
		"email.status.subject":       "Account status update",
		"email.status.activated":     "We are pleased to inform you that your account has been activated.",
		"email.status.deactivated":   "We regret to inform you that your account has been deactivated. Please contact our customer service for more information.",
		"email.welcome.subject":      "Welcome to EuroNova",
		"email.welcome.body":         "Your account has been successfully created. Here is your identification information:",
		"email.welcome.clientid":     "Client ID",
		"email.welcome.account":      "Account number",
		"email.welcome.warning":      "Keep this information safe and do not share it with anyone.",
	},
}

// T looks up a message key for the given language, falling back to French.
func T(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Tf looks up a key and applies Sprintf formatting.
func Tf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// StepName returns the human-readable fee name of verification stage n.
func StepName(lang string, n int) string {
	return T(lang, fmt.Sprintf("step.name.%d", n))
}
