package email

import (
	"fmt"
	"time"

	"github.com/bookline/bookline_backend/pkg/constants"
)

// AppointmentEmailData contains the data needed for appointment email templates.
type AppointmentEmailData struct {
	FirstName        string
	Email            string
	ProfessionalName string
	ScheduledTime    time.Time
	Reference        string
	AppName          string
	BaseURL          string
}

func formatWhen(t time.Time) string {
	return t.Format("Monday, January 2, 2006 at 15:04")
}

// BuildWelcomeEmail creates a welcome email message for newly registered users.
func BuildWelcomeEmail(email, firstName, appName string) Message {
	if appName == "" {
		appName = constants.ServiceDisplayName
	}
	if firstName == "" {
		firstName = "there"
	}

	subject := fmt.Sprintf("Welcome to %s", appName)

	textBody := fmt.Sprintf(`Hi %s,

Welcome to %s!

Your account is ready. You can now browse professionals, check their
availability and book appointments that fit your schedule.

Thanks,
The %s Team`,
		firstName, appName, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Welcome to %s!</p>
    <p>Your account is ready. You can now browse professionals, check their availability and book appointments that fit your schedule.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, appName, appName)

	return Message{
		To:       []string{email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAppointmentConfirmationEmail creates a confirmation email for a freshly booked appointment.
func BuildAppointmentConfirmationEmail(data AppointmentEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = constants.ServiceDisplayName
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	when := formatWhen(data.ScheduledTime)
	subject := fmt.Sprintf("Your %s appointment is confirmed", appName)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment with %s has been booked.

When: %s
Booking reference: %s

Keep the reference handy in case you need to reschedule or cancel.

Thanks,
The %s Team`,
		firstName, data.ProfessionalName, when, data.Reference, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Your appointment with <strong>%s</strong> has been booked.</p>
    <p>When: <strong>%s</strong></p>
    <p>Booking reference:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace; font-size: 16px;">%s</p>
    <p style="color: #6b7280; font-size: 14px;">Keep the reference handy in case you need to reschedule or cancel.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, data.ProfessionalName, when, data.Reference, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAppointmentCancelledEmail creates a cancellation notice for an appointment.
func BuildAppointmentCancelledEmail(data AppointmentEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = constants.ServiceDisplayName
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	when := formatWhen(data.ScheduledTime)
	subject := fmt.Sprintf("Your %s appointment was cancelled", appName)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment scheduled for %s has been cancelled.

Booking reference: %s

The time slot has been released, so you can book a new appointment
whenever you are ready.

Thanks,
The %s Team`,
		firstName, when, data.Reference, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Your appointment scheduled for <strong>%s</strong> has been cancelled.</p>
    <p>Booking reference:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace; font-size: 16px;">%s</p>
    <p>The time slot has been released, so you can book a new appointment whenever you are ready.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, when, data.Reference, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAppointmentReminderEmail creates a reminder email for an upcoming appointment.
func BuildAppointmentReminderEmail(data AppointmentEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = constants.ServiceDisplayName
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	when := formatWhen(data.ScheduledTime)
	subject := fmt.Sprintf("Reminder: your appointment at %s", data.ScheduledTime.Format("15:04"))

	textBody := fmt.Sprintf(`Hi %s,

This is a reminder that you have an appointment with %s coming up.

When: %s
Booking reference: %s

See you soon,
The %s Team`,
		firstName, data.ProfessionalName, when, data.Reference, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>This is a reminder that you have an appointment with <strong>%s</strong> coming up.</p>
    <p>When: <strong>%s</strong></p>
    <p>Booking reference:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace; font-size: 16px;">%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">See you soon,<br>The %s Team</p>
</body>
</html>`,
		firstName, data.ProfessionalName, when, data.Reference, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildNotificationEmail wraps a stored notification message for email delivery.
func BuildNotificationEmail(email, firstName, message, appName string) Message {
	if appName == "" {
		appName = constants.ServiceDisplayName
	}
	if firstName == "" {
		firstName = "there"
	}

	subject := fmt.Sprintf("New notification from %s", appName)

	textBody := fmt.Sprintf(`Hi %s,

%s

You can manage how you receive these alerts in your notification settings.

Thanks,
The %s Team`,
		firstName, message, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>%s</p>
    <p>You can manage how you receive these alerts in your notification settings.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, message, appName)

	return Message{
		To:       []string{email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
