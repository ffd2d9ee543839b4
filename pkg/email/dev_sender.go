package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// DevSender writes every email into a directory instead of sending it: the
// HTML body and a JSON file with the envelope, sharing one base name.
type DevSender struct {
	dir string
	seq atomic.Uint64
	now func() time.Time
}

// NewDevSender creates a development sender. dir is created on first send.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir, now: time.Now}
}

type devEnvelope struct {
	Timestamp time.Time `json:"timestamp"`
	SendTo    string    `json:"send_to"`
	Subject   string    `json:"subject"`
	Tag       string    `json:"tag,omitempty"`
}

// SendEmail writes "<time>_<seq>_<tag or subject>.html" and its ".json".
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	now := d.now()
	base := filepath.Join(d.dir, fmt.Sprintf("%s_%04d_%s", now.Format("20060102_150405"), d.seq.Add(1), fileLabel(label)))

	envelope, err := json.MarshalIndent(devEnvelope{
		Timestamp: now.UTC(),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
	}, "", "  ")
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	for name, data := range map[string][]byte{base + ".html": []byte(params.BodyHTML), base + ".json": envelope} {
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return errors.Join(ErrFailedToSendEmail, err)
		}
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9\-_.]`)

// fileLabel lowercases s and keeps letters, digits, dash, underscore and dot,
// turning spaces into underscores. The result is at most 64 bytes.
func fileLabel(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), " ", "_")
	s = unsafeFileChars.ReplaceAllString(s, "")
	if len(s) > 64 {
		s = s[:64]
	}
	if s == "" {
		return "email"
	}
	return s
}
