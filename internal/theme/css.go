package theme

import (
	"bytes"
	"fmt"
	"regexp"
	"text/template"
	"time"
)

var hexColour = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate rejects colours that are not #rgb or #rrggbb and negative radii.
// Palette values end up verbatim in CSS.
func (p Palette) Validate() error {
	for name, c := range map[string]string{
		"primary":      p.Primary,
		"primary_dark": p.PrimaryDark,
		"background":   p.Background,
		"paper":        p.Paper,
		"error":        p.Error,
		"success":      p.Success,
	} {
		if !hexColour.MatchString(c) {
			return fmt.Errorf("palette %s: %q is not a hex colour", name, c)
		}
	}
	if p.Radius < 0 {
		return fmt.Errorf("palette radius: %d is negative", p.Radius)
	}
	return nil
}

var stylesheet = template.Must(template.New("theme.css").Parse(`:root {
  --primary: {{.Primary}};
  --primary-dark: {{.PrimaryDark}};
  --background: {{.Background}};
  --paper: {{.Paper}};
  --error: {{.Error}};
  --success: {{.Success}};
  --radius: {{.Radius}}px;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  min-height: 100vh;
  background: var(--background);
  font-family: "Roboto", "Helvetica", "Arial", sans-serif;
  color: #212121;
}
.container { max-width: 600px; margin: 0 auto; padding: 64px 16px; }
.card {
  background: var(--paper);
  border-radius: var(--radius);
  box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
  padding: 32px;
}
h1 { margin: 0 0 8px; color: var(--primary-dark); font-size: 2rem; font-weight: 500; }
.subtitle { margin: 0 0 24px; color: #616161; }
.form-field { margin-bottom: 20px; display: flex; flex-direction: column; }
.form-field label { font-size: 0.875rem; margin-bottom: 6px; color: #424242; }
.form-field input, .form-field textarea {
  font: inherit;
  padding: 12px;
  border: 1px solid #c4c4c4;
  border-radius: var(--radius);
}
.form-field input:focus, .form-field textarea:focus {
  outline: none;
  border-color: var(--primary);
  box-shadow: 0 0 0 2px {{.Primary}}33;
}
.form-field.has-error input, .form-field.has-error textarea { border-color: var(--error); }
.error { margin-top: 4px; font-size: 0.75rem; color: var(--error); }
.btn-primary {
  width: 100%;
  padding: 12px;
  font: inherit;
  font-weight: 500;
  color: #fff;
  background: var(--primary);
  border: 0;
  border-radius: var(--radius);
  cursor: pointer;
}
.btn-primary:hover { background: var(--primary-dark); }
.btn-primary:disabled { opacity: 0.6; cursor: default; }
.notification {
  position: fixed;
  top: 24px;
  right: 24px;
  display: flex;
  align-items: center;
  gap: 16px;
  padding: 12px 16px;
  border-radius: var(--radius);
  color: #fff;
  box-shadow: 0 4px 12px rgba(0, 0, 0, 0.15);
  animation: notification-out 0.3s ease-in {{.NoticeDelay}} forwards;
}
@keyframes notification-out { to { opacity: 0; visibility: hidden; } }
.notification form { margin: 0; }
.notification.success { background: var(--success); }
.notification.error { background: var(--error); }
.notification button { background: none; border: 0; color: inherit; font-size: 1.25rem; cursor: pointer; }
`))

// renderCSS expands the stylesheet for p.  The notification fades out
// after noticeTTL, matching the server-side dismiss timer.
func renderCSS(p Palette, noticeTTL time.Duration) ([]byte, error) {
	data := struct {
		Palette
		NoticeDelay string
	}{p, fmt.Sprintf("%dms", noticeTTL.Milliseconds())}

	var buf bytes.Buffer
	if err := stylesheet.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
