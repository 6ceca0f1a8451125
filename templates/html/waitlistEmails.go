package templates

import (
	"fmt"
	"html"
)

// codePanel renders the access code in a large monospace block so it is easy
// to read back and hand-type.
func codePanel(code string) string {
	return fmt.Sprintf(`<div style="background-color: #1a1a2e; border: 1px solid #667eea; border-radius: 8px; padding: 24px; text-align: center; margin: 24px 0;">
        <p style="color: #9ca3af; font-size: 12px; letter-spacing: 2px; margin: 0 0 8px 0;">YOUR ACCESS CODE</p>
        <p style="color: #fff; font-family: 'Courier New', monospace; font-size: 22px; letter-spacing: 3px; margin: 0;">%s</p>
      </div>`, html.EscapeString(code))
}

// RenderWelcomeEmail generates the HTML body for the signup welcome email,
// showing the member's queue position and access code
func RenderWelcomeEmail(code string, queueNumber int) string {
	body := fmt.Sprintf(`<p>Thanks for joining the OSIA Founding Circle.</p>
      <p>You're <strong>#%d</strong> in line.</p>
      %s
      <p>Hold onto this code; you'll use it together with this email address to activate your account once you're approved.</p>`,
		queueNumber, codePanel(code))
	return RenderGenericEmail("Welcome to the Founding Circle", body)
}

// RenderApprovalEmail generates the HTML body for the approval email carrying
// the member's fresh access code
func RenderApprovalEmail(code string, queueNumber int) string {
	body := fmt.Sprintf(`<p>Good news &mdash; you've been approved as founding member <strong>#%d</strong>.</p>
      %s
      <p>Enter this code with this email address to activate your account. The code replaces any code we sent you earlier.</p>`,
		queueNumber, codePanel(code))
	return RenderGenericEmail("You're in", body)
}

// RenderDigestEmail generates the HTML body for the daily waitlist digest
// sent to the admin address
func RenderDigestEmail(total, pending, approved, activated, remaining int64) string {
	body := fmt.Sprintf(`<p>Founding circle waitlist summary:</p>
      <ul>
        <li>Total members: <strong>%d</strong></li>
        <li>Pending: <strong>%d</strong></li>
        <li>Approved: <strong>%d</strong></li>
        <li>Activated: <strong>%d</strong></li>
        <li>Remaining founding slots: <strong>%d</strong></li>
      </ul>`, total, pending, approved, activated, remaining)
	return RenderGenericEmail("Daily Waitlist Digest", body)
}
