// Package notify sends transactional email for high-priority classification
// outcomes over SMTP with STARTTLS.
package notify

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"jobtrack-agent/internal/domain"
)

// ShouldNotify is the dispatch rule: only interview invitations and assessment
// requests are worth interrupting someone for, and only when the classifier is
// reasonably sure and identified both employer and role.
func ShouldNotify(c domain.Classification) bool {
	if c.Category != domain.CategoryInterviewInvitation && c.Category != domain.CategoryAssessmentRequest {
		return false
	}
	return c.Confidence > 0.6 && c.Company != "" && c.Position != ""
}

// Mailer delivers rendered messages to the configured recipients.
type Mailer struct {
	Host       string
	Port       int
	From       string
	Password   string
	Recipients []string
}

// Enabled reports whether the mailer has everything it needs to send.
// A partially configured mailer is a config error; an empty one just means
// notifications are off.
func (m *Mailer) Enabled() bool {
	return m.From != "" && m.Password != "" && len(m.Recipients) > 0
}

func (m *Mailer) send(subject, body string) error {
	if !m.Enabled() {
		return errors.New("notifications not configured")
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + strings.Join(m.Recipients, ", "),
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.From, m.Recipients, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Printf("[notify] sent %q to %d recipients", subject, len(m.Recipients))
	return nil
}

// NotifyClassification sends the interview or assessment alert for msg.
func (m *Mailer) NotifyClassification(msg domain.RawMessage, c domain.Classification) error {
	var subject, lead, closing string
	switch c.Category {
	case domain.CategoryInterviewInvitation:
		subject = fmt.Sprintf("Interview Invitation: %s - %s", c.Company, c.Position)
		lead = "Great news! You have received an interview invitation."
		closing = "Please check your email for full details and respond promptly."
	case domain.CategoryAssessmentRequest:
		subject = fmt.Sprintf("Assessment Request: %s - %s", c.Company, c.Position)
		lead = "You have received an assessment request!"
		closing = "Please check your email for full details and complete the assessment as soon as possible."
	default:
		return fmt.Errorf("no notification template for category %q", c.Category)
	}

	preview := msg.Body
	if len(preview) > 500 {
		preview = preview[:500]
	}

	body := fmt.Sprintf(`%s

Company: %s
Position: %s
Email Subject: %s
Received: %s

Original Email Preview:
%s...

%s
`, lead, c.Company, c.Position, msg.Subject, msg.Date.Format("2006-01-02 15:04"), preview, closing)

	return m.send(subject, body)
}

// SummaryCounts is the activity rollup for the daily summary mail.
type SummaryCounts struct {
	NewApplications int
	StatusUpdates   int
	Interviews      int
	Assessments     int
}

// SendDailySummary reports the day's tracking activity.
func (m *Mailer) SendDailySummary(counts SummaryCounts) error {
	subject := "Daily Job Tracking Summary - " + time.Now().Format("2006-01-02")
	body := fmt.Sprintf(`Here's your daily job tracking summary:

New Applications Found: %d
Status Updates: %d
Interview Invitations: %d
Assessment Requests: %d

Your job search is being actively monitored.
`, counts.NewApplications, counts.StatusUpdates, counts.Interviews, counts.Assessments)

	return m.send(subject, body)
}
