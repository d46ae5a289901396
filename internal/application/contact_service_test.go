package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/detailing-backoffice/internal/catalog"
	"github.com/example/detailing-backoffice/internal/mail"
)

var testBusiness = mail.Identity{Name: "LM Detailing", Email: "contact@lmdetailing.com", Phone: "06 93 94 03 67"}

type senderStub struct {
	mu       sync.Mutex
	requests []mail.SendRequest
	err      error
}

func (s *senderStub) Send(ctx context.Context, req mail.SendRequest) (mail.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return mail.SendResult{}, s.err
	}
	return mail.SendResult{MessageID: "msg-1", SentAt: referenceNow}, nil
}

func newContactFixture() (*ContactService, *recordStoreStub[Contact]) {
	store := newRecordStoreStub[Contact]()
	svc := NewContactServiceWithLogger(store, testBusiness, sequence("contact"), fixedClock(referenceNow), discardLogger())
	return svc, store
}

func sampleContact() ContactInput {
	return ContactInput{
		Name:    "Jean Hoarau",
		Email:   " Jean.Hoarau@Example.com ",
		Phone:   "0692 00 00 00",
		Service: "Pro Protection",
		Message: "Bonjour, quel délai pour une céramique ?",
	}
}

func TestContactService_SubmitContact(t *testing.T) {
	t.Parallel()

	t.Run("stores a new unread message first and returns a mailto link", func(t *testing.T) {
		t.Parallel()
		svc, store := newContactFixture()
		ctx := context.Background()

		first, err := svc.SubmitContact(ctx, sampleContact())
		if err != nil {
			t.Fatalf("SubmitContact returned error: %v", err)
		}
		second, err := svc.SubmitContact(ctx, sampleContact())
		if err != nil {
			t.Fatalf("SubmitContact returned error: %v", err)
		}

		contact := first.Contact
		if contact.Status != catalog.ContactNew || contact.Read || contact.Priority != "" {
			t.Fatalf("unexpected initial state %+v", contact)
		}
		if contact.Email != "jean.hoarau@example.com" {
			t.Fatalf("expected normalized email, got %q", contact.Email)
		}
		if !contact.SentAt.Equal(referenceNow) {
			t.Fatalf("expected sent time %v, got %v", referenceNow, contact.SentAt)
		}
		if !strings.HasPrefix(first.Mailto, "mailto:contact@lmdetailing.com?subject=Demande%20de%20devis%20-%20Pro%20Protection") {
			t.Fatalf("unexpected mailto link %q", first.Mailto)
		}

		stored := store.snapshot()
		if len(stored) != 2 || stored[0].ID != second.Contact.ID {
			t.Fatalf("expected newest message first, got %+v", stored)
		}
	})

	t.Run("requires a name and a valid email", func(t *testing.T) {
		t.Parallel()
		svc, store := newContactFixture()

		_, err := svc.SubmitContact(context.Background(), ContactInput{Email: "pas-un-email"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if vErr.FieldErrors["nom"] == "" || vErr.FieldErrors["email"] == "" {
			t.Fatalf("expected nom and email errors, got %v", vErr.FieldErrors)
		}
		if store.writes != 0 {
			t.Fatalf("expected no write, got %d", store.writes)
		}
	})
}

func TestContactService_ReadStatusPriority(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newContactFixture()
	receipt, err := svc.SubmitContact(ctx, sampleContact())
	if err != nil {
		t.Fatalf("SubmitContact returned error: %v", err)
	}
	id := receipt.Contact.ID

	fetched, err := svc.GetContact(ctx, id)
	if err != nil || fetched.Read {
		t.Fatalf("expected GetContact not to mark read, got %+v %v", fetched, err)
	}

	read, err := svc.MarkContactRead(ctx, id)
	if err != nil || !read.Read {
		t.Fatalf("expected message marked read, got %+v %v", read, err)
	}

	progressed, err := svc.SetContactStatus(ctx, id, catalog.ContactInProgress)
	if err != nil {
		t.Fatalf("SetContactStatus returned error: %v", err)
	}
	if progressed.Status != catalog.ContactInProgress || !progressed.Read {
		t.Fatalf("unexpected contact %+v", progressed)
	}

	high, err := svc.SetContactPriority(ctx, id, catalog.PriorityHigh)
	if err != nil || high.Priority != catalog.PriorityHigh {
		t.Fatalf("expected haute priority, got %+v %v", high, err)
	}
	cleared, err := svc.SetContactPriority(ctx, id, "")
	if err != nil || cleared.Priority != "" {
		t.Fatalf("expected priority cleared, got %+v %v", cleared, err)
	}

	var vErr *ValidationError
	if _, err := svc.SetContactPriority(ctx, id, "urgente"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.SetContactStatus(ctx, id, "ferme"); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.MarkContactRead(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactService_ReplyToContact(t *testing.T) {
	t.Parallel()

	reunion := time.FixedZone("RET", 4*60*60)
	repliedAt := time.Date(2024, time.January, 15, 10, 30, 0, 0, reunion)

	setup := func(t *testing.T) (*ContactService, string) {
		t.Helper()
		store := newRecordStoreStub[Contact]()
		svc := NewContactServiceWithLogger(store, testBusiness, sequence("contact"), fixedClock(repliedAt), discardLogger())
		receipt, err := svc.SubmitContact(context.Background(), sampleContact())
		if err != nil {
			t.Fatalf("SubmitContact returned error: %v", err)
		}
		return svc, receipt.Contact.ID
	}

	t.Run("stores the reply and builds compose links", func(t *testing.T) {
		t.Parallel()
		svc, id := setup(t)

		result, err := svc.ReplyToContact(context.Background(), ReplyParams{ID: id, Message: "  Merci, disponible lundi.  "})
		if err != nil {
			t.Fatalf("ReplyToContact returned error: %v", err)
		}
		contact := result.Contact
		if contact.Status != catalog.ContactHandled || !contact.Read || contact.Reply != "Merci, disponible lundi." {
			t.Fatalf("unexpected contact %+v", contact)
		}
		if contact.RepliedAt == nil || !contact.RepliedAt.Equal(repliedAt) {
			t.Fatalf("expected reply time %v, got %v", repliedAt, contact.RepliedAt)
		}
		if !strings.HasPrefix(result.GmailURL, "https://mail.google.com/mail/?view=cm&fs=1&to=jean.hoarau%40example.com") {
			t.Fatalf("unexpected gmail link %q", result.GmailURL)
		}
		if !strings.Contains(result.MailtoURL, "R%C3%A9ponse%3A%20Pro%20Protection%20-%20LM%20Detailing") {
			t.Fatalf("unexpected mailto subject in %q", result.MailtoURL)
		}
		if result.Delivered {
			t.Fatalf("expected no delivery without a sender")
		}
	})

	t.Run("delivers through the configured sender", func(t *testing.T) {
		t.Parallel()
		svc, id := setup(t)
		sender := &senderStub{}
		svc.UseSender(sender, "LM Detailing <noreply@lmdetailing.com>")

		result, err := svc.ReplyToContact(context.Background(), ReplyParams{ID: id, Message: "**Merci**"})
		if err != nil {
			t.Fatalf("ReplyToContact returned error: %v", err)
		}
		if !result.Delivered || result.MessageID != "msg-1" {
			t.Fatalf("expected delivery, got %+v", result)
		}
		if len(sender.requests) != 1 {
			t.Fatalf("expected one send, got %d", len(sender.requests))
		}
		req := sender.requests[0]
		if len(req.To) != 1 || req.To[0] != "jean.hoarau@example.com" || req.ReplyTo != testBusiness.Email {
			t.Fatalf("unexpected request %+v", req)
		}
		if !strings.Contains(req.HTML, "<strong>Merci</strong>") {
			t.Fatalf("expected rendered markdown, got %q", req.HTML)
		}
	})

	t.Run("keeps the stored reply when delivery fails", func(t *testing.T) {
		t.Parallel()
		svc, id := setup(t)
		svc.UseSender(&senderStub{err: errors.New("provider down")}, "noreply@lmdetailing.com")

		result, err := svc.ReplyToContact(context.Background(), ReplyParams{ID: id, Message: "Merci"})
		if err != nil {
			t.Fatalf("expected delivery failure not to fail the reply, got %v", err)
		}
		if result.Delivered || result.DeliveryError != "provider down" {
			t.Fatalf("expected delivery error to be reported, got %+v", result)
		}
		stored, err := svc.GetContact(context.Background(), id)
		if err != nil || stored.Reply != "Merci" {
			t.Fatalf("expected reply to be stored, got %+v %v", stored, err)
		}
	})

	t.Run("rejects empty replies and unknown ids", func(t *testing.T) {
		t.Parallel()
		svc, id := setup(t)

		var vErr *ValidationError
		if _, err := svc.ReplyToContact(context.Background(), ReplyParams{ID: id, Message: "   "}); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, err := svc.ReplyToContact(context.Background(), ReplyParams{ID: "missing", Message: "Merci"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("strict transitions refuse replying to archived messages", func(t *testing.T) {
		t.Parallel()
		svc, id := setup(t)
		if _, err := svc.SetContactStatus(context.Background(), id, catalog.ContactArchived); err != nil {
			t.Fatalf("SetContactStatus returned error: %v", err)
		}
		svc.UseTransitions(TransitionTable[catalog.ContactStatus]{
			catalog.ContactArchived: {catalog.ContactNew},
		})

		if _, err := svc.ReplyToContact(context.Background(), ReplyParams{ID: id, Message: "Merci"}); !errors.Is(err, ErrTransitionNotAllowed) {
			t.Fatalf("expected ErrTransitionNotAllowed, got %v", err)
		}
	})
}

func TestContactService_DeleteContact(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newContactFixture()
	receipt, err := svc.SubmitContact(ctx, sampleContact())
	if err != nil {
		t.Fatalf("SubmitContact returned error: %v", err)
	}

	if err := svc.DeleteContact(ctx, DeleteParams{ID: receipt.Contact.ID}); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("expected ErrConfirmationRequired, got %v", err)
	}
	if err := svc.DeleteContact(ctx, DeleteParams{ID: receipt.Contact.ID, Confirmed: true}); err != nil {
		t.Fatalf("DeleteContact returned error: %v", err)
	}
	if len(store.snapshot()) != 0 {
		t.Fatalf("expected message removed, got %+v", store.snapshot())
	}
}

func TestFilterContactsAndSummary(t *testing.T) {
	t.Parallel()

	contacts := []Contact{
		{ID: "1", Name: "Jean Hoarau", Email: "jean@example.com", Message: "Céramique", Status: catalog.ContactNew, Priority: catalog.PriorityHigh},
		{ID: "2", Name: "Anne Payet", Email: "anne@example.com", Service: "Film Solaire", Status: catalog.ContactInProgress, Read: true},
		{ID: "3", Name: "Paul Grondin", Email: "paul@example.com", Message: "Devis PPF", Status: catalog.ContactHandled, Read: true, Priority: catalog.PriorityLow},
	}

	tests := []struct {
		name   string
		filter ContactFilter
		want   []string
	}{
		{name: "everything", filter: ContactFilter{Status: "all", Priority: "all"}, want: []string{"1", "2", "3"}},
		{name: "search body", filter: ContactFilter{Search: "céramique"}, want: []string{"1"}},
		{name: "search service", filter: ContactFilter{Search: "solaire"}, want: []string{"2"}},
		{name: "search email", filter: ContactFilter{Search: "PAUL@"}, want: []string{"3"}},
		{name: "status", filter: ContactFilter{Status: "en_cours"}, want: []string{"2"}},
		{name: "priority", filter: ContactFilter{Priority: "haute"}, want: []string{"1"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FilterContacts(contacts, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %+v", tt.want, got)
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Fatalf("expected %v, got %+v", tt.want, got)
				}
			}
		})
	}

	svc := NewContactServiceWithLogger(newRecordStoreStub(contacts...), testBusiness, nil, fixedClock(referenceNow), discardLogger())
	summary, err := svc.ContactSummary(context.Background())
	if err != nil {
		t.Fatalf("ContactSummary returned error: %v", err)
	}
	want := ContactSummary{Total: 3, New: 1, InProgress: 1, Unread: 1}
	if summary != want {
		t.Fatalf("expected %+v, got %+v", want, summary)
	}
}
