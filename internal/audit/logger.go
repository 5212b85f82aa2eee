package audit

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes workflow audit events as structured log lines.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record logs one event. Failures (an "error" field, or a failed or
// degraded result) are warnings. Contact details are masked.
func (l *Logger) Record(action string, fields map[string]string) {
	evt := l.log.Info()
	if isFailure(fields) {
		evt = l.log.Warn()
	}
	evt = evt.Str("action", action)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fields[k]
		switch k {
		case "email":
			v = maskEmail(v)
		case "to":
			v = maskContact(v)
		}
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

func isFailure(fields map[string]string) bool {
	if _, ok := fields["error"]; ok {
		return true
	}
	switch fields["result"] {
	case "error", "degraded":
		return true
	}
	return false
}

// maskEmail keeps the first two characters and the domain.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 5 || at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

// maskContact masks an email address or keeps the last four digits of a
// phone number.
func maskContact(to string) string {
	if strings.Contains(to, "@") {
		return maskEmail(to)
	}
	if len(to) <= 4 {
		return "***"
	}
	return "***" + to[len(to)-4:]
}
