package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/detailing-backoffice/internal/catalog"
	"github.com/example/detailing-backoffice/internal/mail"
)

// ContactService owns the contact message collection.
type ContactService struct {
	contacts    RecordStore[Contact]
	business    mail.Identity
	sender      mail.Sender
	mailFrom    string
	transitions TransitionTable[catalog.ContactStatus]
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewContactService wires dependencies for contact operations.
func NewContactService(contacts RecordStore[Contact], business mail.Identity, idGenerator func() string, now func() time.Time) *ContactService {
	return NewContactServiceWithLogger(contacts, business, idGenerator, now, nil)
}

// NewContactServiceWithLogger wires dependencies for contact operations with a logger.
func NewContactServiceWithLogger(contacts RecordStore[Contact], business mail.Identity, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ContactService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ContactService{
		contacts:    contacts,
		business:    business,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// UseSender enables delivery of replies through sender, sent as from.
func (s *ContactService) UseSender(sender mail.Sender, from string) {
	if s != nil {
		s.sender = sender
		s.mailFrom = from
	}
}

// UseTransitions restricts status changes to table. A nil table removes the restriction.
func (s *ContactService) UseTransitions(table TransitionTable[catalog.ContactStatus]) {
	if s != nil {
		s.transitions = table
	}
}

func (s *ContactService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ContactService", operation, attrs...)
}

// SubmitContact stores a message from the public contact form and returns the
// mailto: link the visitor's mail client opens.
func (s *ContactService) SubmitContact(ctx context.Context, input ContactInput) (receipt ContactReceipt, err error) {
	if s == nil {
		err = fmt.Errorf("ContactService is nil")
		return
	}

	normalized := ContactInput{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:   strings.TrimSpace(input.Phone),
		Service: strings.TrimSpace(input.Service),
		Message: strings.TrimSpace(input.Message),
	}

	logger := s.loggerWith(ctx, "SubmitContact", "service", normalized.Service)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "contact submission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("contact_id", receipt.Contact.ID).InfoContext(ctx, "contact submitted")
	}()

	if vErr := validateStruct(normalized); vErr.HasErrors() {
		err = vErr
		return
	}

	contact := Contact{
		ID:      s.idGenerator(),
		Name:    normalized.Name,
		Email:   normalized.Email,
		Phone:   normalized.Phone,
		Service: normalized.Service,
		Message: normalized.Message,
		SentAt:  s.now(),
		Status:  catalog.ContactNew,
	}

	_, err = s.contacts.Update(ctx, func(current []Contact) ([]Contact, error) {
		if indexOf(current, contact.ID, contactID) >= 0 {
			return nil, fmt.Errorf("contact id %q already exists", contact.ID)
		}
		return prepend(current, contact), nil
	})
	if err != nil {
		return
	}

	draft := mail.ComposeQuoteRequest(s.business, mail.QuoteRequest{
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
		Service: contact.Service,
		Message: contact.Message,
	})
	receipt = ContactReceipt{Contact: contact, Mailto: draft.MailtoURL()}
	return
}

// GetContact returns a message without changing its read flag.
func (s *ContactService) GetContact(ctx context.Context, id string) (Contact, error) {
	if s == nil {
		return Contact{}, fmt.Errorf("ContactService is nil")
	}
	return findRecord(ctx, s.contacts, id, contactID)
}

// MarkContactRead flags a message as read, as opening it in the back office does.
func (s *ContactService) MarkContactRead(ctx context.Context, id string) (contact Contact, err error) {
	if s == nil {
		err = fmt.Errorf("ContactService is nil")
		return
	}

	logger := s.loggerWith(ctx, "MarkContactRead", "contact_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "marking contact read failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	contact, err = updateRecord(ctx, s.contacts, id, contactID, func(_ []Contact, current *Contact) error {
		current.Read = true
		return nil
	})
	return
}

// SetContactStatus changes the status of a message and marks it read.
func (s *ContactService) SetContactStatus(ctx context.Context, id string, status catalog.ContactStatus) (contact Contact, err error) {
	if s == nil {
		err = fmt.Errorf("ContactService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetContactStatus", "contact_id", id, "status", status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "contact status change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "contact status changed")
	}()

	if !status.Valid() {
		vErr := &ValidationError{}
		vErr.add("statut", "statut is invalid")
		err = vErr
		return
	}

	contact, err = updateRecord(ctx, s.contacts, id, contactID, func(_ []Contact, current *Contact) error {
		if !s.transitions.Allows(current.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, current.Status, status)
		}
		current.Status = status
		current.Read = true
		return nil
	})
	return
}

// SetContactPriority sets the priority of a message. An empty priority clears it.
func (s *ContactService) SetContactPriority(ctx context.Context, id string, priority catalog.Priority) (contact Contact, err error) {
	if s == nil {
		err = fmt.Errorf("ContactService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetContactPriority", "contact_id", id, "priority", priority)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "contact priority change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "contact priority changed")
	}()

	if priority != "" && !priority.Valid() {
		vErr := &ValidationError{}
		vErr.add("priorite", "priorite is invalid")
		err = vErr
		return
	}

	contact, err = updateRecord(ctx, s.contacts, id, contactID, func(_ []Contact, current *Contact) error {
		current.Priority = priority
		return nil
	})
	return
}

// ReplyToContact stores the reply on the message, marks it handled and read,
// and composes the outgoing email. When a sender is configured the email is
// also delivered; a delivery failure is reported in the result and does not
// undo the stored reply.
func (s *ContactService) ReplyToContact(ctx context.Context, params ReplyParams) (result ReplyResult, err error) {
	if s == nil {
		err = fmt.Errorf("ContactService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ReplyToContact", "contact_id", params.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "contact reply failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("delivered", result.Delivered, "message_id", result.MessageID).InfoContext(ctx, "contact replied")
	}()

	message := strings.TrimSpace(params.Message)
	if message == "" {
		vErr := &ValidationError{}
		vErr.add("message", "message is required")
		err = vErr
		return
	}

	repliedAt := s.now()
	result.Contact, err = updateRecord(ctx, s.contacts, params.ID, contactID, func(_ []Contact, current *Contact) error {
		if !s.transitions.Allows(current.Status, catalog.ContactHandled) {
			return fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, current.Status, catalog.ContactHandled)
		}
		current.Status = catalog.ContactHandled
		current.Reply = message
		current.RepliedAt = &repliedAt
		current.Read = true
		return nil
	})
	if err != nil {
		return
	}

	draft := mail.ComposeReply(s.business, mail.Original{
		Name:    result.Contact.Name,
		Email:   result.Contact.Email,
		Service: result.Contact.Service,
		Message: result.Contact.Message,
		SentAt:  result.Contact.SentAt,
	}, message, repliedAt.Location())
	result.GmailURL = draft.GmailURL()
	result.MailtoURL = draft.MailtoURL()

	if s.sender == nil {
		return
	}

	messageID, deliveryErr := s.deliver(ctx, draft)
	if deliveryErr != nil {
		logger.WarnContext(ctx, "reply stored but not delivered", "error", deliveryErr)
		result.DeliveryError = deliveryErr.Error()
		return
	}
	result.Delivered = true
	result.MessageID = messageID
	return
}

func (s *ContactService) deliver(ctx context.Context, draft mail.Draft) (string, error) {
	req, err := draft.Request(s.mailFrom, s.business.Email)
	if err != nil {
		return "", err
	}
	sent, err := s.sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return sent.MessageID, nil
}

// DeleteContact removes a message once the deletion has been confirmed.
func (s *ContactService) DeleteContact(ctx context.Context, params DeleteParams) (err error) {
	if s == nil {
		return fmt.Errorf("ContactService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteContact", "contact_id", params.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "contact deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "contact deleted")
	}()

	return deleteRecord(ctx, s.contacts, params, contactID)
}

// ListContacts returns the messages matching filter, newest first.
func (s *ContactService) ListContacts(ctx context.Context, filter ContactFilter) ([]Contact, error) {
	if s == nil {
		return nil, fmt.Errorf("ContactService is nil")
	}

	vErr := &ValidationError{}
	if !isAll(filter.Status) && !catalog.ContactStatus(strings.TrimSpace(filter.Status)).Valid() {
		vErr.add("statut", "statut is invalid")
	}
	if !isAll(filter.Priority) && !catalog.Priority(strings.TrimSpace(filter.Priority)).Valid() {
		vErr.add("priorite", "priorite is invalid")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	contacts, err := s.contacts.Load(ctx)
	if err != nil {
		return nil, err
	}
	return FilterContacts(contacts, filter), nil
}

// ContactSummary counts messages per headline status and unread messages.
func (s *ContactService) ContactSummary(ctx context.Context) (ContactSummary, error) {
	if s == nil {
		return ContactSummary{}, fmt.Errorf("ContactService is nil")
	}

	contacts, err := s.contacts.Load(ctx)
	if err != nil {
		return ContactSummary{}, err
	}

	summary := ContactSummary{Total: len(contacts)}
	for _, contact := range contacts {
		switch contact.Status {
		case catalog.ContactNew:
			summary.New++
		case catalog.ContactInProgress:
			summary.InProgress++
		}
		if !contact.Read {
			summary.Unread++
		}
	}
	return summary, nil
}

// FilterContacts keeps the messages whose name, email, service or body
// contains the search text and whose status and priority match.
func FilterContacts(contacts []Contact, filter ContactFilter) []Contact {
	search := strings.TrimSpace(filter.Search)
	status := strings.TrimSpace(filter.Status)
	priority := strings.TrimSpace(filter.Priority)

	out := make([]Contact, 0, len(contacts))
	for _, contact := range contacts {
		if search != "" && !containsFold(search, contact.Name, contact.Email, contact.Service, contact.Message) {
			continue
		}
		if !isAll(status) && string(contact.Status) != status {
			continue
		}
		if !isAll(priority) && string(contact.Priority) != priority {
			continue
		}
		out = append(out, contact)
	}
	return out
}

func contactID(contact Contact) string {
	return contact.ID
}
