package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/reteach/backend/internal/models"
)

const resultsSubject = "Your Diagnostic Results & Study Resources"

// Notifier delivers result emails to students. Implementations must be
// safe for concurrent use; senders fire and forget.
type Notifier interface {
	SendResults(to string, results Results) error
}

// Results is everything the results email needs.
type Results struct {
	StudentName     string
	Score           int
	Total           int
	ScorePercentage float64
	WeakTopics      []models.WeakTopic
	Resources       map[string]models.Resource
}

// ── SMTP ───────────────────────────────────────────────────

// SMTPNotifier sends plain-text mail through an authenticated SMTP
// relay using STARTTLS.
type SMTPNotifier struct {
	host     string
	port     string
	botEmail string
	password string
}

func NewSMTPNotifier(host, port, botEmail, password string) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, botEmail: botEmail, password: password}
}

func (n *SMTPNotifier) SendResults(to string, results Results) error {
	body := BuildResultsBody(results)

	msg := strings.Builder{}
	fmt.Fprintf(&msg, "From: reTeach Bot <%s>\r\n", n.botEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", resultsSubject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := n.host + ":" + n.port
	auth := smtp.PlainAuth("", n.botEmail, n.password, n.host)
	if err := smtp.SendMail(addr, auth, n.botEmail, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	log.Printf("[email] sent results to %s", to)
	return nil
}

// Verify checks the SMTP connection and credentials at startup.
func (n *SMTPNotifier) Verify() error {
	client, err := smtp.Dial(n.host + ":" + n.port)
	if err != nil {
		return fmt.Errorf("dial %s:%s: %w", n.host, n.port, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: n.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if err := client.Auth(smtp.PlainAuth("", n.botEmail, n.password, n.host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return client.Quit()
}

// ── Body ───────────────────────────────────────────────────

// BuildResultsBody renders the plain-text results email.
func BuildResultsBody(r Results) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", r.StudentName)
	b.WriteString("Thank you for completing your diagnostic assessment!\n\n")
	b.WriteString("--- YOUR RESULTS ---\n")
	fmt.Fprintf(&b, "Score: %d/%d (%.1f%%)\n\n", r.Score, r.Total, r.ScorePercentage)

	if len(r.WeakTopics) > 0 {
		b.WriteString("--- RECOMMENDED STUDY RESOURCES ---\n\n")
		b.WriteString("Based on your responses, here are some topics you might want to review:\n\n")
		for _, topic := range r.WeakTopics {
			fmt.Fprintf(&b, "\n* %s\n", topic.TopicName)
			if res, ok := r.Resources[topic.TopicName]; ok {
				fmt.Fprintf(&b, "   Khan Academy: %s\n", res.KhanAcademyURL)
				fmt.Fprintf(&b, "   Textbook Pages: %s\n", res.TextbookPages)
				fmt.Fprintf(&b, "   %s\n", res.Description)
			}
		}
		b.WriteString("\n")
	} else {
		b.WriteString("\nGreat job! You showed strong understanding across all topics.\n\n")
	}

	b.WriteString("--- NEXT STEPS ---\n")
	b.WriteString("1. Review the resources above for topics you found challenging\n")
	b.WriteString("2. Practice with additional problems in those areas\n")
	b.WriteString("3. Reach out to your teacher if you need additional support\n\n")
	b.WriteString("Keep up the great work!\n\n")
	b.WriteString("Best regards,\nreTeach Team\n\n")
	b.WriteString("---\nThis is an automated message. Please do not reply to this email.\n")

	return b.String()
}
