// Package alert sends queue-health emails when waiting batches pile up
// behind a stage.
package alert

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/stage"
)

type Notifier struct {
	threshold int
	to        string
	minGap    time.Duration
	lastSent  time.Time
	send      func(subject, body string) error
}

// NewNotifier alerts when any (department, stage) cell reaches threshold
// waiting batches, at most once per minGap. A threshold of zero disables
// alerting.
func NewNotifier(threshold int, to string, minGap time.Duration) *Notifier {
	n := &Notifier{
		threshold: threshold,
		to:        to,
		minGap:    minGap,
	}
	n.send = n.sendEmail
	return n
}

func (n *Notifier) SnapshotComputed(snap *stage.Snapshot) {
	if n.threshold <= 0 || n.to == "" {
		return
	}

	var stalled []stage.Aggregate
	for _, agg := range snap.Departments {
		if agg.WaitingCount >= n.threshold {
			stalled = append(stalled, agg)
		}
	}
	if len(stalled) == 0 {
		return
	}

	if !n.lastSent.IsZero() && time.Since(n.lastSent) < n.minGap {
		return
	}

	subject := fmt.Sprintf("Queue health: %d stage(s) over waiting threshold", len(stalled))
	var body strings.Builder
	for _, agg := range stalled {
		fmt.Fprintf(&body, "%s / %s: %d waiting, %d in progress (avg %d days)\n",
			agg.Department, agg.Stage, agg.WaitingCount, agg.InProgressCount, agg.AverageDaysInProgress)
	}

	if err := n.send(subject, body.String()); err != nil {
		log.Printf("Failed to send queue health alert: %v", err)
		return
	}

	n.lastSent = time.Now()
	log.Printf("Queue health alert sent to %s (%d stages)", n.to, len(stalled))
}

func (n *Notifier) sendEmail(subject, body string) error {
	fromName := os.Getenv("FROM_NAME")
	fromAddress := os.Getenv("FROM_ADDRESS")
	from := mail.NewEmail(fromName, fromAddress)
	toEmail := mail.NewEmail("", n.to)
	email := mail.NewSingleEmail(from, subject, toEmail, body, body)
	client := sendgrid.NewSendClient(os.Getenv("EMAIL_API_KEY"))
	response, err := client.Send(email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	return nil
}
