package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims and dedupes list fields and checks the settings a
// run cannot start without. Warnings flag configurations that will run but
// probably not do what the user wants.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Mailbox.SenderAny = trimList(out.Mailbox.SenderAny)
	out.Mailbox.SubjectAny = trimList(out.Mailbox.SubjectAny)
	out.Notify.Recipients = trimList(out.Notify.Recipients)

	if out.Polling.IntervalMinutes <= 0 {
		res.addErr("polling.interval_minutes must be > 0")
	} else if out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d) and may hit provider rate limits.", out.Polling.IntervalMinutes)
	}
	if out.Polling.DaysBack <= 0 {
		res.addErr("polling.days_back must be > 0")
	}
	if out.Polling.FirstRunMessages <= 0 {
		res.addErr("polling.first_run_messages must be > 0")
	}
	if out.Polling.OngoingMessages <= 0 {
		res.addErr("polling.ongoing_messages must be > 0")
	}
	if out.Polling.RetentionDays <= 0 {
		res.addErr("polling.retention_days must be > 0")
	}

	if strings.TrimSpace(out.Mailbox.IMAPHost) == "" {
		res.addErr("mailbox.imap_host is required")
	}
	if out.Mailbox.IMAPPort == 0 {
		res.addErr("mailbox.imap_port is required")
	}
	if strings.TrimSpace(out.Mailbox.Username) == "" {
		res.addErr("mailbox.username is required")
	}
	if strings.TrimSpace(out.Mailbox.Folder) == "" {
		res.addErr("mailbox.folder is required")
	}
	if len(out.Mailbox.SenderAny) == 0 && len(out.Mailbox.SubjectAny) == 0 {
		res.addWarn("mailbox sender_any and subject_any are both empty; every recent message will be fetched.")
	}

	if out.Model.Enabled && out.Model.RequestsPerSecond <= 0 {
		res.addWarn("model.requests_per_second not set; defaulting to a conservative budget.")
	}

	// Notifications are optional, but a half-configured block is an error.
	if out.Notify.From != "" || len(out.Notify.Recipients) > 0 {
		if strings.TrimSpace(out.Notify.From) == "" {
			res.addErr("notify.from is required when recipients are set")
		}
		if len(out.Notify.Recipients) == 0 {
			res.addErr("notify.recipients is required when notify.from is set")
		}
		if strings.TrimSpace(out.Notify.SMTPHost) == "" || out.Notify.SMTPPort == 0 {
			res.addErr("notify.smtp_host and notify.smtp_port are required when notifications are enabled")
		}
	}

	return out, res
}
