package mailer

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/domodwyer/mailyak/v3"

	"github.com/clubdoor/clubdoor/internal/domain"
)

// TicketEmail carries everything the confirmation email displays.
type TicketEmail struct {
	To         string
	EventTitle string
	Location   string
	StartsAt   time.Time
	DoorsAt    time.Time
	TicketID   string
	TicketType domain.TicketType
}

// WaitlistEmail carries the person's derived rank at join time.
type WaitlistEmail struct {
	To         string
	EventTitle string
	Rank       int
	Total      int
}

// Mailer is the email collaborator. Callers treat failures as non-fatal
// side effects, with the one documented exception of ticket confirmation.
type Mailer interface {
	SendTicketEmail(m TicketEmail) error
	SendWaitlistEmail(m WaitlistEmail) error
}

type Config struct {
	Addr     string // host:port
	Host     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTP sends through a plain-auth SMTP relay via mailyak.
type SMTP struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTP {
	return &SMTP{cfg: cfg}
}

func (s *SMTP) newMail() *mailyak.MailYak {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	my := mailyak.New(s.cfg.Addr, auth)
	my.From(s.cfg.From)
	if s.cfg.FromName != "" {
		my.FromName(s.cfg.FromName)
	}

	return my
}

func (s *SMTP) SendTicketEmail(m TicketEmail) error {
	const op = "mailer.SMTP.SendTicketEmail"

	my := s.newMail()
	my.To(m.To)
	my.Subject(fmt.Sprintf("Your ticket for %s", m.EventTitle))
	my.Plain().Set(fmt.Sprintf(
		"You're in! Your %s ticket for %s is confirmed.\n\n"+
			"Where: %s\nDoors: %s\nStart: %s\n\nTicket ID: %s\n",
		m.TicketType, m.EventTitle, m.Location,
		m.DoorsAt.Format(time.RFC1123), m.StartsAt.Format(time.RFC1123),
		m.TicketID,
	))

	if err := my.Send(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *SMTP) SendWaitlistEmail(m WaitlistEmail) error {
	const op = "mailer.SMTP.SendWaitlistEmail"

	my := s.newMail()
	my.To(m.To)
	my.Subject(fmt.Sprintf("You're on the waitlist for %s", m.EventTitle))
	my.Plain().Set(fmt.Sprintf(
		"You're number %d of %d on the waitlist for %s.\n\n"+
			"If a ticket frees up, grab it from the event page.\n",
		m.Rank, m.Total, m.EventTitle,
	))

	if err := my.Send(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Nop discards every email. Used in tests and local development.
type Nop struct{}

func (Nop) SendTicketEmail(TicketEmail) error     { return nil }
func (Nop) SendWaitlistEmail(WaitlistEmail) error { return nil }
