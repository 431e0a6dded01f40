package mailer

import "fmt"

func accessRequestNotificationHTML(requesterEmail, fullName, reason, baseURL string) string {
	note := ""
	if reason != "" {
		note = fmt.Sprintf(`<p style="color:#555;">Reason: %s</p>`, reason)
	}
	return fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
			<h2 style="color:#333;">New access request</h2>
			<p><strong>%s</strong> (%s) has requested access to the store management system.</p>
			%s
			<p>
				<a href="%s/access-requests"
				   style="background:#4f46e5;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none;">
					Review request
				</a>
			</p>
		</div>`, fullName, requesterEmail, note, baseURL)
}

func credentialsHTML(email, temporaryPassword, baseURL string) string {
	return fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
			<h2 style="color:#333;">Your account is ready</h2>
			<p>Your access request has been approved. Sign in with:</p>
			<table style="border-collapse:collapse;margin:16px 0;">
				<tr>
					<td style="padding:6px 12px;color:#555;">Email</td>
					<td style="padding:6px 12px;"><strong>%s</strong></td>
				</tr>
				<tr>
					<td style="padding:6px 12px;color:#555;">Temporary password</td>
					<td style="padding:6px 12px;"><code style="background:#f4f4f5;padding:2px 6px;border-radius:4px;">%s</code></td>
				</tr>
			</table>
			<p style="color:#b45309;">Please change this password after your first login.</p>
			<p>
				<a href="%s/login"
				   style="background:#4f46e5;color:#fff;padding:10px 20px;border-radius:6px;text-decoration:none;">
					Sign in
				</a>
			</p>
		</div>`, email, temporaryPassword, baseURL)
}

func rejectionHTML() string {
	return `
		<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
			<h2 style="color:#333;">Access request update</h2>
			<p>Thank you for your interest. Your access request was not approved at this time.</p>
			<p style="color:#555;">If you believe this is a mistake, please contact the store administrator.</p>
		</div>`
}
