package mailer

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	templates "github.com/osiahq/founding-circle-api/templates/html"
)

// SendGridNotifier delivers waitlist email through SendGrid. Every send is
// dispatched in a background goroutine with its own error boundary: delivery
// failures are logged and swallowed, never surfaced to the calling operation.
type SendGridNotifier struct {
	FromName  string
	FromEmail string
}

// NewSendGridNotifier returns a notifier sending from the founding circle address
func NewSendGridNotifier() *SendGridNotifier {
	return &SendGridNotifier{
		FromName:  "OSIA Founding Circle",
		FromEmail: "no-reply@osia.app",
	}
}

// NotifyWelcomeWithCode emails a new member their queue position and access code
func (n *SendGridNotifier) NotifyWelcomeWithCode(email, code string, queueNumber int) {
	subject := "Welcome to the OSIA Founding Circle"
	plainText := fmt.Sprintf("You're #%d on the founding circle list. Your access code is %s. Hold onto it; you'll need it to activate your account.", queueNumber, code)
	htmlContent := templates.RenderWelcomeEmail(code, queueNumber)
	n.send(email, subject, plainText, htmlContent)
}

// NotifyApprovalWithCode emails an approved member their fresh access code
func (n *SendGridNotifier) NotifyApprovalWithCode(email, code string, queueNumber int) {
	subject := "Your OSIA access code is ready"
	plainText := fmt.Sprintf("You've been approved as founding member #%d. Your access code is %s. Use it with this email address to activate your account.", queueNumber, code)
	htmlContent := templates.RenderApprovalEmail(code, queueNumber)
	n.send(email, subject, plainText, htmlContent)
}

func (n *SendGridNotifier) send(email, subject, plainText, htmlContent string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorw("panic while sending email", "email", email, "panic", r)
			}
		}()

		from := mail.NewEmail(n.FromName, n.FromEmail)
		to := mail.NewEmail("", email)
		message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

		sendgridAPIKey := os.Getenv("SENDGRID_API_KEY")
		if sendgridAPIKey == "" {
			zap.S().Errorw("SENDGRID_API_KEY not set, cannot send email", "email", email)
			return
		}

		client := sendgrid.NewSendClient(sendgridAPIKey)
		response, err := client.Send(message)
		if err != nil {
			zap.S().Errorw("failed to send email", "email", email, "error", err)
			return
		}

		if response.StatusCode >= 200 && response.StatusCode < 300 {
			zap.S().Infow("email sent successfully", "email", email, "statusCode", response.StatusCode)
		} else {
			zap.S().Warnw("email sent with non-2xx status", "email", email, "statusCode", response.StatusCode, "body", response.Body)
		}
	}()
}
