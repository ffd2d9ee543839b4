package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// LimitData fills the resource limit emails.
type LimitData struct {
	OrganizationID string
	Resource       string // display name, e.g. "Teams"
	CurrentUsage   int64
	Limit          int64
	Percentage     float64
	UpgradeURL     string // optional
}

// LimitWarning renders the near-limit email body.
func LimitWarning(d LimitData) templ.Component {
	return layout("Approaching your plan limit", func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<p>Your organization is using <strong>%d of %d</strong> %s (%.0f%%).</p>`+
				`<p>Once the limit is reached no more %s can be added.</p>`,
			d.CurrentUsage, d.Limit, templ.EscapeString(d.Resource), d.Percentage,
			templ.EscapeString(d.Resource),
		)
		if err != nil {
			return err
		}
		return upgradeButton(w, d.UpgradeURL)
	})
}

// LimitReached renders the limit-reached email body.
func LimitReached(d LimitData) templ.Component {
	return layout("Plan limit reached", func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<p>Your organization has reached its limit of <strong>%d</strong> %s.</p>`+
				`<p>Remove unused %s or upgrade your plan to continue.</p>`,
			d.Limit, templ.EscapeString(d.Resource), templ.EscapeString(d.Resource),
		)
		if err != nil {
			return err
		}
		return upgradeButton(w, d.UpgradeURL)
	})
}

func layout(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><body style="font-family:sans-serif;color:#1f2937"><h1 style="font-size:20px">%s</h1>`,
			templ.EscapeString(title),
		); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func upgradeButton(w io.Writer, url string) error {
	if url == "" {
		return nil
	}
	_, err := fmt.Fprintf(w,
		`<p><a href="%s" style="background:#2563eb;color:#fff;padding:10px 16px;border-radius:6px;text-decoration:none">Upgrade plan</a></p>`,
		templ.EscapeString(string(templ.URL(url))),
	)
	return err
}

// Message renders a generic notification email.
func Message(title, message string) templ.Component {
	return layout(title, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p>%s</p>`, templ.EscapeString(message))
		return err
	})
}
