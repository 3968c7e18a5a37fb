package service

import (
	"fmt"
	"log"
	"os"
	"strings"

	"drivehub/internal/db"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SenderService delivers booking status emails and SMS. Delivery is
// best-effort and asynchronous; failures are logged and never surface to the
// request that triggered them.
type SenderService struct{}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) BookingStatusChanged(booking db.Booking, vehicle db.Vehicle, user db.User) {
	status := strings.ToLower(string(booking.Status))

	subject := fmt.Sprintf("Your DriveHub booking is %s - %s", status, booking.Code)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour booking at DriveHub is %s.\n\n"+
			"Booking Details:\n"+
			"Booking Code: %s\n"+
			"Vehicle: %s %s\n"+
			"Pick-up: %s\n"+
			"Return: %s\n"+
			"Total: $%.2f\n\n"+
			"Thank you for choosing DriveHub.",
		user.Name, status, booking.Code, vehicle.Brand, vehicle.Model,
		booking.StartDate.Format("02 Jan 2006"),
		booking.EndDate.Format("02 Jan 2006"),
		float64(booking.TotalCostCents)/100,
	)
	sms := fmt.Sprintf("DriveHub: booking %s is %s. Pick-up: %s. Details in your email.",
		booking.Code, status, booking.StartDate.Format("02/01"))

	go func() {
		if err := sendEmailWithSendGrid(user.Email, user.Name, subject, body); err != nil {
			log.Printf("email for booking %s failed: %v", booking.Code, err)
		}
		if user.Phone == "" {
			return
		}
		if err := sendSMS(user.Phone, sms); err != nil {
			log.Printf("SMS for booking %s failed: %v", booking.Code, err)
		}
	}()
}

func sendEmailWithSendGrid(toEmail, toName, subject, plainBody string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY not set")
	}
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL not set")
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "DriveHub"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, "")

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func sendSMS(toNumber, body string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")
	if accountSid == "" || authToken == "" || fromNumber == "" {
		return fmt.Errorf("Twilio credentials not configured")
	}
	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("destination number %q is not E.164, SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(body)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("send SMS via Twilio: %w", err)
	}
	return nil
}
