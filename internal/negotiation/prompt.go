package negotiation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashureev/offertalk/internal/domain"
)

// recruiterPrompt frames the recruiter agent. The recruiter sees only its own
// budget and what is known about the job seeker; the budget itself is never
// to be disclosed in replies.
func recruiterPrompt(session *domain.Session, window domain.ExchangeWindow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional recruiter negotiating for a %s position.\n", session.JobTitle)
	fmt.Fprintf(&b, "Your budget range is $%s - $%s.\n\n",
		formatUSD(session.RecruiterRange.Min), formatUSD(session.RecruiterRange.Max))

	b.WriteString("What we know about the job seeker:\n")
	b.WriteString(joinLines(session.Facts.Facts(domain.RoleJobSeeker)))
	b.WriteString("\n\n")

	writeRecentHistory(&b, window)

	b.WriteString("Guidelines:\n")
	b.WriteString("- don't reveal the company's budget range\n")
	b.WriteString("- respond in 10-100 words\n")
	b.WriteString("- be concise and to the point\n")
	b.WriteString("- the goal is to reach a mutual agreement on the salary\n")
	return b.String()
}

// seekerPrompt frames the job seeker agent. The seeker sees its own
// three-point range and both fact lists.
func seekerPrompt(session *domain.Session, window domain.ExchangeWindow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a job seeker negotiating for a %s position.\n", session.JobTitle)
	b.WriteString("Your salary expectations:\n")
	fmt.Fprintf(&b, "- Minimum acceptable: $%s\n", formatUSD(session.SeekerRange.Min))
	fmt.Fprintf(&b, "- Target salary: $%s\n", formatUSD(session.SeekerRange.Target))
	fmt.Fprintf(&b, "- Ideal maximum: $%s\n\n", formatUSD(session.SeekerRange.Max))

	b.WriteString("What we know about your background and preferences:\n")
	b.WriteString(joinLines(session.Facts.Facts(domain.RoleJobSeeker)))
	b.WriteString("\n\n")

	b.WriteString("What we know about the company and role:\n")
	b.WriteString(joinLines(session.Facts.Facts(domain.RoleRecruiter)))
	b.WriteString("\n\n")

	writeRecentHistory(&b, window)

	b.WriteString("Guidelines:\n")
	b.WriteString("- Use known facts about the company and role in your negotiation\n")
	b.WriteString("- Consider the recent conversation context\n")
	b.WriteString("- Reference your relevant experience and achievements\n")
	b.WriteString("- Be professional and confident\n")
	b.WriteString("- Don't reveal your exact salary ranges\n")
	b.WriteString("- Start negotiations near your target salary\n")
	b.WriteString("- Consider the entire compensation package\n")
	b.WriteString("- Use market research to support your position\n")
	b.WriteString("- Be prepared to compromise but don't go below your minimum\n")
	b.WriteString("- Keep responses focused on the negotiation\n")
	b.WriteString("- Add new factual information about your qualifications when relevant\n")
	return b.String()
}

func writeRecentHistory(b *strings.Builder, window domain.ExchangeWindow) {
	b.WriteString("Recent conversation history:\n")
	b.WriteString("Job Seeker's recent messages:\n")
	b.WriteString(bulletList(window.JobSeeker))
	b.WriteString("\n\n")
	b.WriteString("Recruiter's recent messages:\n")
	b.WriteString(bulletList(window.Recruiter))
	b.WriteString("\n\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func bulletList(lines []string) string {
	bullets := make([]string, len(lines))
	for i, line := range lines {
		bullets[i] = "- " + line
	}
	return strings.Join(bullets, "\n")
}

// formatUSD renders a salary figure with comma-grouped thousands, keeping
// fractional cents only when present.
func formatUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign, intPart = "-", intPart[1:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + strings.Join(groups, ",") + fracPart
}
