package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-erp-api/internal/models"
	"github.com/noah-isme/campus-erp-api/pkg/jobs"
	"github.com/noah-isme/campus-erp-api/pkg/mail"
)

type notifyQueueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *notifyQueueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type captureSender struct {
	sent []mail.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func notifyApplication() *models.AdmissionApplication {
	return &models.AdmissionApplication{
		ApplicationID: "ADM2025000042",
		FirstName:     "Asha",
		LastName:      "Verma",
		Email:         "asha.verma@example.com",
	}
}

func TestNotificationServiceApplicationSubmitted(t *testing.T) {
	queue := &notifyQueueStub{}
	svc := NewNotificationService(queue, &captureSender{}, zap.NewNop())

	svc.ApplicationSubmitted(context.Background(), notifyApplication(), "Computer Science Engineering")

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "application_submitted", queue.jobs[0].Type)

	msg, ok := queue.jobs[0].Payload.(mail.Message)
	require.True(t, ok)
	assert.Equal(t, "asha.verma@example.com", msg.To)
	assert.Equal(t, "Asha Verma", msg.ToName)
	assert.Equal(t, "Application received", msg.Subject)
	assert.Contains(t, msg.Text, "ADM2025000042")
	assert.Contains(t, msg.Text, "Computer Science Engineering")
	assert.Contains(t, msg.HTML, "<strong>ADM2025000042</strong>")
}

func TestNotificationServiceAdmissionApproved(t *testing.T) {
	queue := &notifyQueueStub{}
	svc := NewNotificationService(queue, &captureSender{}, zap.NewNop())

	svc.AdmissionApproved(context.Background(), notifyApplication(), "2025CS0001", "s3cret-pass")

	require.Len(t, queue.jobs, 1)
	msg := queue.jobs[0].Payload.(mail.Message)
	assert.Equal(t, "Admission approved", msg.Subject)
	assert.Contains(t, msg.Text, "Roll number: 2025CS0001")
	assert.Contains(t, msg.Text, "s3cret-pass")
	assert.Contains(t, msg.Text, "change your password on first login")
}

func TestNotificationServiceAdmissionDeclined(t *testing.T) {
	queue := &notifyQueueStub{}
	svc := NewNotificationService(queue, &captureSender{}, zap.NewNop())

	svc.AdmissionDeclined(context.Background(), notifyApplication(), "seats exhausted")

	require.Len(t, queue.jobs, 1)
	msg := queue.jobs[0].Payload.(mail.Message)
	assert.Equal(t, "Admission decision", msg.Subject)
	assert.Contains(t, msg.Text, "Reason: seats exhausted")
}

func TestNotificationServiceDocumentsRequested(t *testing.T) {
	queue := &notifyQueueStub{}
	svc := NewNotificationService(queue, &captureSender{}, zap.NewNop())

	svc.DocumentsRequested(context.Background(), notifyApplication(), []string{"10th marksheet", "transfer certificate"})

	require.Len(t, queue.jobs, 1)
	msg := queue.jobs[0].Payload.(mail.Message)
	assert.Equal(t, "Documents required", msg.Subject)
	assert.Contains(t, msg.Text, "- 10th marksheet\n- transfer certificate")
	assert.Contains(t, msg.HTML, "<li>10th marksheet</li>")
}

func TestNotificationServicePaymentReceipt(t *testing.T) {
	queue := &notifyQueueStub{}
	svc := NewNotificationService(queue, &captureSender{}, zap.NewNop())

	receipt := "RCP20250800001"
	fee := &models.Fee{
		ID:            "fee-1",
		FeeType:       models.FeeTypeTuition,
		Semester:      3,
		AcademicYear:  "2025-26",
		TotalAmount:   45250.50,
		ReceiptNumber: &receipt,
	}
	svc.PaymentReceipt(context.Background(), "asha.verma@example.com", "Asha Verma", fee)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "payment_receipt", queue.jobs[0].Type)
	msg := queue.jobs[0].Payload.(mail.Message)
	assert.Equal(t, "Payment received, receipt RCP20250800001", msg.Subject)
	assert.Contains(t, msg.Text, "45250.50")
	assert.Contains(t, msg.Text, "semester 3")
}

func TestNotificationServiceEnqueueFailureIsSwallowed(t *testing.T) {
	queue := &notifyQueueStub{err: errors.New("queue stopped")}
	sender := &captureSender{}
	svc := NewNotificationService(queue, sender, zap.NewNop())

	svc.ApplicationSubmitted(context.Background(), notifyApplication(), "Computer Science Engineering")

	assert.Empty(t, queue.jobs)
	assert.Empty(t, sender.sent)
}

func TestNotificationServiceInlineDeliveryWithoutQueue(t *testing.T) {
	sender := &captureSender{}
	svc := NewNotificationService(nil, sender, zap.NewNop())

	svc.AdmissionDeclined(context.Background(), notifyApplication(), "incomplete documents")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Admission decision", sender.sent[0].Subject)
}

func TestNotificationServiceHandleDelivery(t *testing.T) {
	sender := &captureSender{}
	svc := NewNotificationService(&notifyQueueStub{}, sender, zap.NewNop())

	msg := mail.Message{To: "asha.verma@example.com", Subject: "Application received", Text: "body"}
	err := svc.HandleDelivery(context.Background(), jobs.Job{ID: "job-1", Type: "application_submitted", Payload: msg})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "asha.verma@example.com", sender.sent[0].To)
}

func TestNotificationServiceHandleDeliverySenderError(t *testing.T) {
	sender := &captureSender{err: errors.New("smtp down")}
	svc := NewNotificationService(&notifyQueueStub{}, sender, zap.NewNop())

	err := svc.HandleDelivery(context.Background(), jobs.Job{ID: "job-1", Payload: mail.Message{To: "x@example.com"}})
	require.Error(t, err)
}

func TestNotificationServiceHandleDeliveryBadPayload(t *testing.T) {
	sender := &captureSender{}
	svc := NewNotificationService(&notifyQueueStub{}, sender, zap.NewNop())

	err := svc.HandleDelivery(context.Background(), jobs.Job{ID: "job-1", Payload: "not a message"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}
