package email

import "fmt"

// Config holds email delivery settings.
// Without Postmark tokens NewSender falls back to DevSender writing into DevOutputDir.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@quotakit.local"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@quotakit.local"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}

// UsesPostmark reports whether both Postmark tokens are configured.
func (c Config) UsesPostmark() bool {
	return c.PostmarkServerToken != "" && c.PostmarkAccountToken != ""
}

func (c Config) validatePostmark() error {
	required := []struct{ name, value string }{
		{"PostmarkServerToken", c.PostmarkServerToken},
		{"PostmarkAccountToken", c.PostmarkAccountToken},
		{"SenderEmail", c.SenderEmail},
		{"SupportEmail", c.SupportEmail},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, f.name)
		}
		if f.name == "SenderEmail" || f.name == "SupportEmail" {
			if !emailRegex.MatchString(f.value) {
				return fmt.Errorf("%w: %s must be a valid email address", ErrInvalidConfig, f.name)
			}
		}
	}
	return nil
}

// NewSender returns a Postmark sender when tokens are configured and a
// DevSender otherwise.
func NewSender(cfg Config) (EmailSender, error) {
	if cfg.UsesPostmark() {
		return NewPostmarkClient(cfg)
	}
	return NewDevSender(cfg.DevOutputDir), nil
}
