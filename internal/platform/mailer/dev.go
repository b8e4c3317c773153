package mailer

import (
	"github.com/casaguide/concierge/pkg/logger"
)

// DevMailer prints instead of sending; the default in local development.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendGuideLink(toEmail, guestName, propertyName, guideURL string) error {
	logger.Info("[DEV MAIL] Guide link email",
		"to", toEmail,
		"guest", guestName,
		"property", propertyName,
		"guide_url", guideURL,
	)
	return nil
}
