package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"ticket-marketplace/internal/domain/model"
)

var ticketEmail = template.Must(template.New("tickets").Funcs(template.FuncMap{
	"money": money,
}).Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
{{- with .Seller}}{{if .LogoURL}}<img src="{{.LogoURL}}" alt="{{.Name}}" height="48"><br>{{end}}{{end}}
<h2>{{if .Production.Title}}{{.Production.Title}}{{else}}Your tickets{{end}}</h2>
<p>
{{- with .Performance}}{{.Date}}{{if .Time}} at {{.Time}}{{end}}{{end}}<br>
{{- with .Venue}}{{.Name}}{{if .Address}}, {{.Address}}{{end}}{{end}}
</p>
<p>Order <strong>{{.Order.ID}}</strong> &middot; {{money .Order.TotalAmount .Order.Currency}}</p>
<table cellpadding="6">
<tr><th>Section</th><th>Row</th><th>Seat</th><th></th></tr>
{{- range .Tickets}}
<tr><td>{{.Section}}</td><td>{{.Row}}</td><td>{{.SeatNumber}}</td><td><a href="{{.AccessLink}}">View ticket</a></td></tr>
{{- end}}
</table>
{{- with .Seller}}{{if .Email}}<p>Questions? Reply to this email or write to {{.Email}}.</p>{{end}}{{end}}
</body></html>`))

// RenderHTML renders the ticket email body.
func RenderHTML(msg *model.TicketMessage) (string, error) {
	var buf bytes.Buffer
	if err := ticketEmail.Execute(&buf, msg); err != nil {
		return "", fmt.Errorf("render ticket email: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text alternative.
func RenderText(msg *model.TicketMessage) string {
	var b strings.Builder
	if msg.Production != nil && msg.Production.Title != "" {
		fmt.Fprintf(&b, "%s\n", msg.Production.Title)
	}
	if p := msg.Performance; p != nil && p.Date != "" {
		fmt.Fprintf(&b, "%s %s\n", p.Date, p.Time)
	}
	if v := msg.Venue; v != nil && v.Name != "" {
		fmt.Fprintf(&b, "%s\n", v.Name)
	}
	fmt.Fprintf(&b, "\nOrder %s\n\n", msg.Order.ID)
	for _, t := range msg.Tickets {
		fmt.Fprintf(&b, "Section %s, row %s, seat %s: %s\n", t.Section, t.Row, t.SeatNumber, t.AccessLink)
	}
	return b.String()
}

func money(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, strings.ToUpper(currency))
}
