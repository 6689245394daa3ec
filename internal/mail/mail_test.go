package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/vacation-rental/internal/config"
	"github.com/iliyamo/vacation-rental/internal/model"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestSender(cfg config.MailConfig, sendErr error) (*SMTPSender, *[]captured) {
	var sent []captured
	s := NewSMTPSender(cfg)
	s.now = func() time.Time { return time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC) }
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if sendErr != nil {
			return sendErr
		}
		sent = append(sent, captured{addr, from, to, string(msg)})
		return nil
	}
	return s, &sent
}

func stay() model.Reservation {
	return model.Reservation{
		ID:           "r-7",
		Name:         "Ana",
		Email:        "ana@example.com",
		CheckInDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestNotifierRendersAndSends(t *testing.T) {
	s, sent := newTestSender(config.MailConfig{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}, nil)
	n := NewNotifier(s)

	if err := n.ReservationArchived(context.Background(), stay()); err != nil {
		t.Fatal(err)
	}
	if err := n.ReviewRequested(context.Background(), stay(), "https://stay.example.com/Review/acc-1"); err != nil {
		t.Fatal(err)
	}
	if len(*sent) != 2 {
		t.Fatalf("sent %d mails", len(*sent))
	}
	first, second := (*sent)[0], (*sent)[1]
	if first.addr != "smtp.example.com:587" || first.from != "noreply@example.com" || first.to[0] != "ana@example.com" {
		t.Fatalf("envelope = %+v", first)
	}
	for _, want := range []string{"Subject: Your reservation was cancelled", "r-7", "2024-06-01", "2024-06-03", "Dear Ana"} {
		if !strings.Contains(first.msg, want) {
			t.Errorf("archived mail missing %q:\n%s", want, first.msg)
		}
	}
	if !strings.Contains(second.msg, "https://stay.example.com/Review/acc-1") {
		t.Errorf("review mail missing link:\n%s", second.msg)
	}
}

func TestSendWithoutHostOnlyLogs(t *testing.T) {
	s, sent := newTestSender(config.MailConfig{}, errors.New("must not be called"))
	if err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}); err != nil {
		t.Fatal(err)
	}
	if len(*sent) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestSendErrors(t *testing.T) {
	boom := errors.New("relay refused")
	s, _ := newTestSender(config.MailConfig{Host: "smtp.example.com", Port: 25}, boom)
	if err := s.Send(context.Background(), Message{To: "a@example.com"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	for _, to := range []string{"", "  ", "a@example.com\r\nBcc: x@example.com"} {
		if err := s.Send(context.Background(), Message{To: to}); !errors.Is(err, ErrNoRecipient) {
			t.Errorf("to %q: err = %v", to, err)
		}
	}
}
