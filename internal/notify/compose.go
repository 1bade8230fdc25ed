package notify

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"ms-tradein/internal/models"
)

type Attachment struct {
	Filename    string
	ContentType string
	// Content is base64 encoded.
	Content string
}

type Email struct {
	To          string
	ToName      string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Compose turns an event into a plain-text email. Unknown event types are an
// error so they surface in the consumer log instead of sending blank mail.
func Compose(event models.NotificationEvent) (Email, error) {
	if event.Email == "" {
		return Email{}, fmt.Errorf("event %s has no recipient address", event.ID)
	}

	d := event.Data
	email := Email{To: event.Email, ToName: event.Name}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", greetingName(event.Name))

	switch event.Type {
	case models.NotifyOrderPlaced:
		if event.Recipient == models.RecipientRecycler {
			email.Subject = fmt.Sprintf("New trade-in order %s", event.OrderNumber)
			fmt.Fprintf(&b, "A customer has sent you a %s (order %s).\n", d["deviceName"], event.OrderNumber)
		} else {
			email.Subject = fmt.Sprintf("We received your trade-in %s", event.OrderNumber)
			fmt.Fprintf(&b, "Thanks for trading in your %s. Your order number is %s.\n", d["deviceName"], event.OrderNumber)
		}

	case models.NotifyOrderStatusChanged:
		email.Subject = fmt.Sprintf("Order %s is now %s", event.OrderNumber, humanize(d["status"]))
		fmt.Fprintf(&b, "The status of your trade-in order %s changed to %s.\n", event.OrderNumber, humanize(d["status"]))
		if d["notes"] != "" {
			fmt.Fprintf(&b, "\nNote from the recycler: %s\n", d["notes"])
		}

	case models.NotifyOrderCompleted:
		email.Subject = fmt.Sprintf("Order %s completed", event.OrderNumber)
		fmt.Fprintf(&b, "Your trade-in of %s is complete and %s has been paid.\n", d["deviceName"], d["amount"])

	case models.NotifyReviewRequested:
		email.Subject = "How did your trade-in go?"
		fmt.Fprintf(&b, "Now that order %s is complete, we would love to hear about your experience.\n", event.OrderNumber)

	case models.NotifyPaymentStatusChanged:
		email.Subject = fmt.Sprintf("Payment update for order %s", event.OrderNumber)
		fmt.Fprintf(&b, "The payment for order %s is now %s.\n", event.OrderNumber, humanize(d["paymentStatus"]))
		if d["transactionId"] != "" {
			fmt.Fprintf(&b, "Reference: %s\n", d["transactionId"])
		}

	case models.NotifyCounterOfferCreated:
		email.Subject = fmt.Sprintf("New offer for your %s", d["deviceName"])
		fmt.Fprintf(&b, "After inspecting your device the recycler has revised the offer for order %s from %s to %s.\n",
			event.OrderNumber, d["originalPrice"], d["amendedPrice"])
		fmt.Fprintf(&b, "\nReason: %s\n", d["reason"])
		fmt.Fprintf(&b, "\nAccept or decline before %s:\n%s\n", d["expiresAt"], d["respondUrl"])
		if link := d["respondUrl"]; link != "" {
			qr, err := QRAttachment(link)
			if err != nil {
				return Email{}, err
			}
			email.Attachments = append(email.Attachments, qr)
			b.WriteString("\nYou can also scan the attached QR code.\n")
		}

	case models.NotifyCounterOfferAccepted:
		email.Subject = fmt.Sprintf("Counter offer accepted for order %s", event.OrderNumber)
		if event.Recipient == models.RecipientRecycler {
			fmt.Fprintf(&b, "The customer accepted your offer of %s for order %s.\n", d["amendedPrice"], event.OrderNumber)
		} else {
			fmt.Fprintf(&b, "You accepted the revised offer of %s for order %s.\n", d["amendedPrice"], event.OrderNumber)
		}
		writeNotes(&b, d["customerNotes"])

	case models.NotifyCounterOfferDeclined:
		email.Subject = fmt.Sprintf("Counter offer declined for order %s", event.OrderNumber)
		if event.Recipient == models.RecipientRecycler {
			fmt.Fprintf(&b, "The customer declined your offer of %s. Order %s has been cancelled.\n", d["amendedPrice"], event.OrderNumber)
		} else {
			fmt.Fprintf(&b, "You declined the revised offer. Order %s has been cancelled.\n", event.OrderNumber)
		}
		writeNotes(&b, d["customerNotes"])

	default:
		return Email{}, fmt.Errorf("no email for event type %q", event.Type)
	}

	b.WriteString("\nThe Trade-in team\n")
	email.Body = b.String()
	return email, nil
}

// QRAttachment renders link as a PNG QR code.
func QRAttachment(link string) (Attachment, error) {
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return Attachment{}, fmt.Errorf("encode qr code: %w", err)
	}
	return Attachment{
		Filename:    "counter-offer.png",
		ContentType: "image/png",
		Content:     base64.StdEncoding.EncodeToString(png),
	}, nil
}

func writeNotes(b *strings.Builder, notes string) {
	if notes != "" {
		fmt.Fprintf(b, "\nCustomer notes: %s\n", notes)
	}
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func humanize(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
