package mail

import (
	"context"
	"strings"
	"text/template"

	"github.com/iliyamo/vacation-rental/internal/daterange"
	"github.com/iliyamo/vacation-rental/internal/model"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"day": daterange.Format,
}).Parse(`
{{define "archived"}}Dear {{.R.Name}},

Your reservation {{.R.ID}} from {{day .R.CheckInDate}} to {{day .R.CheckOutDate}} was cancelled because the accommodation is no longer available.

We are sorry for the inconvenience.
{{end}}
{{define "review"}}Dear {{.R.Name}},

Thank you for staying with us. We would love to hear how your stay went:

{{.Link}}
{{end}}`))

// Notifier renders guest notifications and sends them through a Sender.
type Notifier struct {
	sender Sender
}

func NewNotifier(sender Sender) *Notifier {
	if sender == nil {
		panic("mail: nil sender")
	}
	return &Notifier{sender: sender}
}

func (n *Notifier) ReservationArchived(ctx context.Context, r model.Reservation) error {
	body, err := execute("archived", r, "")
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{To: r.Email, Subject: "Your reservation was cancelled", Body: body})
}

func (n *Notifier) ReviewRequested(ctx context.Context, r model.Reservation, link string) error {
	body, err := execute("review", r, link)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{To: r.Email, Subject: "How was your stay?", Body: body})
}

func execute(name string, r model.Reservation, link string) (string, error) {
	var b strings.Builder
	data := struct {
		R    model.Reservation
		Link string
	}{r, link}
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
