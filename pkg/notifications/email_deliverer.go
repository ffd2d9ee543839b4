package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/a-h/templ"

	"github.com/teamarena/quotakit/pkg/email"
	"github.com/teamarena/quotakit/pkg/email/templates"
	"github.com/teamarena/quotakit/pkg/logger"
)

// AddressResolver returns the email address of a user.
// An empty address without error skips the user.
type AddressResolver func(ctx context.Context, userID string) (string, error)

// EmailDeliverer sends notifications by email. Limit notifications use the
// limit templates; other kinds get a plain title and message body.
type EmailDeliverer struct {
	sender  email.EmailSender
	resolve AddressResolver
	logger  *slog.Logger
}

// EmailDelivererOption configures an EmailDeliverer.
type EmailDelivererOption func(*EmailDeliverer)

// WithEmailDelivererLogger sets the logger for the EmailDeliverer.
func WithEmailDelivererLogger(l *slog.Logger) EmailDelivererOption {
	return func(d *EmailDeliverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewEmailDeliverer creates an email channel.
func NewEmailDeliverer(sender email.EmailSender, resolve AddressResolver, opts ...EmailDelivererOption) *EmailDeliverer {
	d := &EmailDeliverer{
		sender:  sender,
		resolve: resolve,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *EmailDeliverer) Deliver(ctx context.Context, notif Notification) error {
	to, err := d.resolve(ctx, notif.UserID)
	if err != nil {
		return fmt.Errorf("resolve email address: %w", err)
	}
	if to == "" {
		d.logger.DebugContext(ctx, "no email address, skipping notification", logger.UserID(notif.UserID))
		return nil
	}

	body, err := templates.Render(ctx, d.component(notif))
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	return d.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  notif.Title,
		BodyHTML: body,
		Tag:      string(notif.Kind),
	})
}

// DeliverBatch delivers each notification and joins the failures.
func (d *EmailDeliverer) DeliverBatch(ctx context.Context, notifs []Notification) error {
	var errs []error
	for _, n := range notifs {
		if err := d.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *EmailDeliverer) component(n Notification) templ.Component {
	data := limitData(n)
	switch n.Kind {
	case KindLimitWarning:
		return templates.LimitWarning(data)
	case KindLimitReached:
		return templates.LimitReached(data)
	default:
		return templates.Message(n.Title, n.Message)
	}
}

func limitData(n Notification) templates.LimitData {
	d := templates.LimitData{OrganizationID: n.OrganizationID}
	d.Resource, _ = n.Data[DataResourceName].(string)
	d.CurrentUsage, _ = n.Data[DataCurrentUsage].(int64)
	d.Limit, _ = n.Data[DataLimit].(int64)
	d.Percentage, _ = n.Data[DataPercentage].(float64)
	for _, a := range n.Actions {
		if a.Style == "primary" {
			d.UpgradeURL = a.URL
			break
		}
	}
	return d
}
