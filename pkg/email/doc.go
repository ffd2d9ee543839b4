// Package email sends transactional email through a provider-agnostic EmailSender.
//
// Two senders are provided: a Postmark client for production and DevSender,
// which writes each email to disk as HTML plus JSON metadata. NewSender picks
// Postmark when both tokens are configured.
//
//	sender, err := email.NewSender(cfg)
//	if err != nil {
//		return err
//	}
//	html, err := templates.Render(ctx, templates.LimitReached(data))
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "owner@example.com",
//		Subject:  "Plan limit reached",
//		BodyHTML: html,
//		Tag:      "limit_reached",
//	})
//
// Parameters are validated before sending; check failures with
// errors.Is(err, email.ErrInvalidParams). Delivery failures wrap ErrFailedToSendEmail.
package email
