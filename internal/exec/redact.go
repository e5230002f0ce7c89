package exec

import (
	"net/url"
	"strings"
)

const redacted = "****"

// Redactor masks secrets in command lines before they reach logs,
// errors or manifests.
type Redactor struct {
	secrets []string
}

// NewRedactor returns a Redactor for the given secrets. Empty values are
// ignored. Each secret is also masked in the percent-encoded form it takes
// inside the userinfo of a clone URL.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		if s == "" {
			continue
		}
		r.secrets = append(r.secrets, s)
		if escaped := userinfoEscape(s); escaped != s {
			r.secrets = append(r.secrets, escaped)
		}
	}
	return r
}

func userinfoEscape(s string) string {
	return strings.TrimPrefix(url.UserPassword("", s).String(), ":")
}

// Redact replaces every secret occurrence in s.
func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}

// Command returns a copy of cmd with secrets masked in its arguments.
func (r *Redactor) Command(cmd Command) Command {
	if r == nil || len(r.secrets) == 0 {
		return cmd
	}
	out := cmd
	out.Args = make([]string, len(cmd.Args))
	for i, arg := range cmd.Args {
		out.Args[i] = r.Redact(arg)
	}
	return out
}
