package mailer

// Service delivers the guest-facing guide link. Failures are surfaced to
// the admin creating the reservation; nothing here retries.
type Service interface {
	SendGuideLink(toEmail, guestName, propertyName, guideURL string) error
}
