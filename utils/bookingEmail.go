package utils

import (
	"MediBook/models"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// BookingMailer sends booking confirmation emails over SMTP.
type BookingMailer struct{}

func NewBookingMailer() *BookingMailer {
	return &BookingMailer{}
}

// SendBookingConfirmation delivers the confirmation email to the
// requester. Callers treat delivery as best-effort; the booking is
// already committed.
func (m *BookingMailer) SendBookingConfirmation(confirmation *models.BookingConfirmation) error {
	// Retrieve the "From" header from an environment variable
	fromEmail := os.Getenv("SMTP_USER")

	msg := gomail.NewMessage()
	msg.SetHeader("From", fromEmail)
	msg.SetHeader("To", confirmation.Patient.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Appointment Confirmed - Serial No. %d", confirmation.SerialNo))

	msg.SetBody("text/plain", fmt.Sprintf(
		"Your appointment with Dr. %s is confirmed.\nSerial No: %d\nDate: %s\nTime: %s\nLocation: %s",
		confirmation.Doctor.Name, confirmation.SerialNo,
		confirmation.Date.Format("02 Jan 2006"), confirmation.SlotTime, confirmation.Location.Name))
	msg.AddAlternative("text/html", bookingConfirmationHTML(confirmation))

	// Retrieve SMTP configuration from environment variables
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		log.Printf("Invalid SMTP_PORT value: %v", err)
		return fmt.Errorf("invalid SMTP_PORT value: %w", err)
	}

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(msg)
}

func bookingConfirmationHTML(c *models.BookingConfirmation) string {
	return `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Appointment Confirmation</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				background-color: #f4f4f4;
				margin: 0;
				padding: 0;
			}
			.container {
				background-color: #ffffff;
				margin: 20px auto;
				padding: 20px;
				border-radius: 8px;
				box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
				max-width: 600px;
			}
			h1 {
				color: #333333;
			}
			p {
				color: #666666;
			}
			.serial {
				font-size: 24px;
				font-weight: bold;
				color: #007bff;
			}
			table {
				width: 100%;
				border-collapse: collapse;
			}
			td {
				padding: 8px;
				border-bottom: 1px solid #eeeeee;
				color: #666666;
			}
		</style>
	</head>
	<body>
		<div class="container">
			<h1>Appointment Confirmed</h1>
			<p>Dear ` + c.Patient.Name + `,</p>
			<p>Your appointment with Dr. ` + c.Doctor.Name + ` has been booked. Your serial number is:</p>
			<p class="serial">` + strconv.Itoa(c.SerialNo) + `</p>
			<table>
				<tr><td>Date</td><td>` + c.Date.Format("02 Jan 2006") + `</td></tr>
				<tr><td>Time</td><td>` + c.SlotTime + `</td></tr>
				<tr><td>Location</td><td>` + c.Location.Name + `</td></tr>
			</table>
			<p>Please arrive a few minutes before your slot starts.</p>
		</div>
	</body>
	</html>
	`
}
