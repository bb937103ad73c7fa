package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/pkg/jobs"
	"github.com/noah-isme/campus-erp-api/pkg/mail"
)

type mailDispatcher interface {
	Enqueue(job jobs.Job) error
}

// NotificationService renders transactional mail for admission and fee
// events and hands delivery to the background queue. Mail must never
// fail the triggering workflow: enqueue problems are logged, delivery
// problems are retried by the queue.
type NotificationService struct {
	queue  mailDispatcher
	sender mail.Sender
	logger *zap.Logger
}

// NewNotificationService constructs the service. A nil queue delivers
// inline, a nil sender discards mail.
func NewNotificationService(queue mailDispatcher, sender mail.Sender, logger *zap.Logger) *NotificationService {
	if sender == nil {
		sender = mail.NoopSender{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: queue, sender: sender, logger: logger}
}

// HandleDelivery is the queue handler for notification jobs. Errors
// surface to the queue so delivery is retried.
func (s *NotificationService) HandleDelivery(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mail.Message)
	if !ok {
		s.logger.Warn("dropping notification with unexpected payload",
			zap.String("job_id", job.ID),
			zap.String("type", job.Type))
		return nil
	}
	return s.sender.Send(ctx, msg)
}

// ApplicationSubmitted confirms receipt of a new application.
func (s *NotificationService) ApplicationSubmitted(ctx context.Context, app *models.AdmissionApplication, courseName string) {
	name := applicantName(app)
	s.dispatch(ctx, "application_submitted", mail.Message{
		To:      app.Email,
		ToName:  name,
		Subject: "Application received",
		Text: fmt.Sprintf("Dear %s,\n\nYour application for %s has been received.\nApplication ID: %s\n\nApplications are reviewed within 7 working days. Use the application ID and your chosen password to track the status on the admission portal.\n\nAdmissions Office",
			name, courseName, app.ApplicationID),
		HTML: htmlParagraphs(
			fmt.Sprintf("Dear %s,", html.EscapeString(name)),
			fmt.Sprintf("Your application for <strong>%s</strong> has been received.", html.EscapeString(courseName)),
			fmt.Sprintf("Application ID: <strong>%s</strong>", app.ApplicationID),
			"Applications are reviewed within 7 working days. Use the application ID and your chosen password to track the status on the admission portal.",
			"Admissions Office",
		),
	})
}

// AdmissionApproved delivers the issued credentials to the applicant.
func (s *NotificationService) AdmissionApproved(ctx context.Context, app *models.AdmissionApplication, rollNo, tempPassword string) {
	name := applicantName(app)
	s.dispatch(ctx, "admission_approved", mail.Message{
		To:      app.Email,
		ToName:  name,
		Subject: "Admission approved",
		Text: fmt.Sprintf("Dear %s,\n\nCongratulations! Your application %s has been approved.\nRoll number: %s\nTemporary password: %s\n\nSign in to the student portal and change your password on first login.\n\nAdmissions Office",
			name, app.ApplicationID, rollNo, tempPassword),
		HTML: htmlParagraphs(
			fmt.Sprintf("Dear %s,", html.EscapeString(name)),
			fmt.Sprintf("Congratulations! Your application <strong>%s</strong> has been approved.", app.ApplicationID),
			fmt.Sprintf("Roll number: <strong>%s</strong><br>Temporary password: <strong>%s</strong>", rollNo, html.EscapeString(tempPassword)),
			"Sign in to the student portal and change your password on first login.",
			"Admissions Office",
		),
	})
}

// AdmissionDeclined informs the applicant of a rejection and its reason.
func (s *NotificationService) AdmissionDeclined(ctx context.Context, app *models.AdmissionApplication, reason string) {
	name := applicantName(app)
	s.dispatch(ctx, "admission_declined", mail.Message{
		To:      app.Email,
		ToName:  name,
		Subject: "Admission decision",
		Text: fmt.Sprintf("Dear %s,\n\nWe regret to inform you that your application %s was not successful.\nReason: %s\n\nAdmissions Office",
			name, app.ApplicationID, reason),
		HTML: htmlParagraphs(
			fmt.Sprintf("Dear %s,", html.EscapeString(name)),
			fmt.Sprintf("We regret to inform you that your application <strong>%s</strong> was not successful.", app.ApplicationID),
			fmt.Sprintf("Reason: %s", html.EscapeString(reason)),
			"Admissions Office",
		),
	})
}

// DocumentsRequested asks the applicant for the missing documents.
func (s *NotificationService) DocumentsRequested(ctx context.Context, app *models.AdmissionApplication, documents []string) {
	name := applicantName(app)
	items := make([]string, 0, len(documents))
	for _, doc := range documents {
		items = append(items, "<li>"+html.EscapeString(doc)+"</li>")
	}
	s.dispatch(ctx, "documents_requested", mail.Message{
		To:      app.Email,
		ToName:  name,
		Subject: "Documents required",
		Text: fmt.Sprintf("Dear %s,\n\nYour application %s needs the following documents before review can continue:\n- %s\n\nUpload them through the admission portal.\n\nAdmissions Office",
			name, app.ApplicationID, strings.Join(documents, "\n- ")),
		HTML: htmlParagraphs(
			fmt.Sprintf("Dear %s,", html.EscapeString(name)),
			fmt.Sprintf("Your application <strong>%s</strong> needs the following documents before review can continue:", app.ApplicationID),
			"<ul>"+strings.Join(items, "")+"</ul>",
			"Upload them through the admission portal.",
			"Admissions Office",
		),
	})
}

// PaymentReceipt acknowledges a settled fee demand.
func (s *NotificationService) PaymentReceipt(ctx context.Context, email, name string, fee *models.Fee) {
	receipt := ""
	if fee.ReceiptNumber != nil {
		receipt = *fee.ReceiptNumber
	}
	s.dispatch(ctx, "payment_receipt", mail.Message{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Payment received, receipt %s", receipt),
		Text: fmt.Sprintf("Dear %s,\n\nWe received your payment of %.2f for the %s fee of semester %d (%s).\nReceipt number: %s\n\nAccounts Office",
			name, fee.TotalAmount, fee.FeeType, fee.Semester, fee.AcademicYear, receipt),
		HTML: htmlParagraphs(
			fmt.Sprintf("Dear %s,", html.EscapeString(name)),
			fmt.Sprintf("We received your payment of <strong>%.2f</strong> for the %s fee of semester %d (%s).", fee.TotalAmount, fee.FeeType, fee.Semester, fee.AcademicYear),
			fmt.Sprintf("Receipt number: <strong>%s</strong>", receipt),
			"Accounts Office",
		),
	})
}

func (s *NotificationService) dispatch(ctx context.Context, kind string, msg mail.Message) {
	if s.queue == nil {
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Warn("failed to send notification",
				zap.String("kind", kind),
				zap.String("to", msg.To),
				zap.Error(err))
		}
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: kind, Payload: msg}); err != nil {
		s.logger.Warn("failed to queue notification",
			zap.String("kind", kind),
			zap.String("to", msg.To),
			zap.Error(err))
	}
}

func htmlParagraphs(paragraphs ...string) string {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString("<p>")
		b.WriteString(p)
		b.WriteString("</p>")
	}
	return b.String()
}

// noopNotifier satisfies the notifier interfaces when notifications are
// not wired, e.g. in tests.
type noopNotifier struct{}

func (noopNotifier) ApplicationSubmitted(context.Context, *models.AdmissionApplication, string) {}
func (noopNotifier) AdmissionApproved(context.Context, *models.AdmissionApplication, string, string) {
}
func (noopNotifier) AdmissionDeclined(context.Context, *models.AdmissionApplication, string) {}
func (noopNotifier) DocumentsRequested(context.Context, *models.AdmissionApplication, []string) {}
func (noopNotifier) PaymentReceipt(context.Context, string, string, *models.Fee)               {}
