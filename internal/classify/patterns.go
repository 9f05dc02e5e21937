package classify

import (
	"regexp"
	"strings"

	"jobtrack-agent/internal/domain"
)

// Category pattern lists, checked in fixed priority order: rejection first,
// then interview, assessment, confirmation. Rejections carry the strongest
// signal, and reordering changes outcomes on messages that contain overlapping
// keywords, so the order must stay as-is.

var rejectionPatterns = compileAll(
	`we regret to inform`,
	`unfortunately.*not selected`,
	`decided to move forward with other candidates`,
	`your application.*not successful`,
	`we will not be moving forward`,
	`position has been filled`,
	`not the right fit`,
	`thank you for your interest.*however`,
)

var interviewPatterns = compileAll(
	`interview.*scheduled`,
	`would like to interview`,
	`next step.*interview`,
	`invite.*interview`,
	`schedule.*interview`,
	`interview invitation`,
	`phone.*interview`,
	`video.*interview`,
)

var assessmentPatterns = compileAll(
	`assessment.*complete`,
	`coding.*challenge`,
	`technical.*assessment`,
	`take.*assessment`,
	`online.*test`,
	`skills.*assessment`,
	`programming.*test`,
)

var confirmationPatterns = compileAll(
	`thank you for (your )?application`,
	`application (has been )?received`,
	`we have received your application`,
	`your application for.*has been submitted`,
	`application confirmation`,
	`thank you for applying`,
	`application acknowledged`,
)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// ConfidenceProfile fixes the confidence reported per matched category.
type ConfidenceProfile struct {
	Rejection    float64
	Interview    float64
	Assessment   float64
	Confirmation float64
}

// ScreenProfile is used when triaging freshly fetched mail.
var ScreenProfile = ConfidenceProfile{Rejection: 0.9, Interview: 0.8, Assessment: 0.8, Confirmation: 0.7}

// FallbackProfile is used when the pattern pass backstops the model.
var FallbackProfile = ConfidenceProfile{Rejection: 0.8, Interview: 0.7, Assessment: 0.7, Confirmation: 0.6}

// PatternClassifier is the deterministic tier: ordered regexp lists over the
// lowercased subject+body, fixed confidence per category.
type PatternClassifier struct {
	Profile ConfidenceProfile
}

// Classify returns the category of text and the profile's confidence for it.
// No match in any list yields CategoryOther with confidence 0.5.
func (c PatternClassifier) Classify(text string) (domain.Category, float64) {
	text = strings.ToLower(text)

	if matchAny(rejectionPatterns, text) {
		return domain.CategoryRejection, c.Profile.Rejection
	}
	if matchAny(interviewPatterns, text) {
		return domain.CategoryInterviewInvitation, c.Profile.Interview
	}
	if matchAny(assessmentPatterns, text) {
		return domain.CategoryAssessmentRequest, c.Profile.Assessment
	}
	if matchAny(confirmationPatterns, text) {
		return domain.CategoryApplicationConfirmation, c.Profile.Confirmation
	}
	return domain.CategoryOther, 0.5
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

var webmailDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"outlook.com": true,
	"hotmail.com": true,
}

var companySubjectPatterns = compileAll(
	`from ([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`,
	`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+team`,
	`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+careers`,
)

// ExtractCompany guesses the employer name: sender domain first (skipping
// public webmail providers), then capture patterns on the subject line.
// Returns "" when nothing matches; callers must treat that as insufficient
// information.
func ExtractCompany(sender, subject, _ string) string {
	if at := strings.LastIndex(sender, "@"); at >= 0 {
		dom := strings.ToLower(strings.Trim(sender[at+1:], "> \t"))
		if dom != "" && !webmailDomains[dom] {
			label := strings.SplitN(dom, ".", 2)[0]
			if label != "" {
				return strings.ToUpper(label[:1]) + label[1:]
			}
		}
	}

	for _, p := range companySubjectPatterns {
		if m := p.FindStringSubmatch(subject); len(m) == 2 {
			return m[1]
		}
	}
	return ""
}

var positionPatterns = compileAll(
	`(?i)position.*?:\s*([^,\n]+)`,
	`(?i)role.*?:\s*([^,\n]+)`,
	`(?i)for the ([^,\n]+) position`,
	`(?i)for the ([^,\n]+) role`,
	`(?i)applied for:\s*([^,\n]+)`,
	`(?i)position of ([^,\n]+)`,
)

// ExtractPosition pulls the role title, trying the subject line before the
// body. Returns "" when nothing matches.
func ExtractPosition(subject, body string) string {
	for _, p := range positionPatterns {
		if m := p.FindStringSubmatch(subject); len(m) == 2 {
			return strings.TrimSpace(m[1])
		}
	}
	for _, p := range positionPatterns {
		if m := p.FindStringSubmatch(body); len(m) == 2 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
