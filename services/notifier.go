package services

import (
	"context"
	"fmt"
	"html"

	"document-tracker-api/catalog"
	"document-tracker-api/config"
	"document-tracker-api/models"
)

// RoutingNotifier is told when a document arrives at a new location.
type RoutingNotifier interface {
	DocumentRouted(ctx context.Context, doc models.TrackedDocument, actor Actor) error
}

// MailRoutingNotifier e-mails the mailbox of the department that owns the new location.
type MailRoutingNotifier struct {
	catalog   *catalog.Catalog
	mailboxes map[string]string
	send      func(to []string, subject, body string) error
}

func NewMailRoutingNotifier(cat *catalog.Catalog, mailboxes map[string]string) *MailRoutingNotifier {
	if cat == nil {
		cat = catalog.Default()
	}
	return &MailRoutingNotifier{catalog: cat, mailboxes: mailboxes, send: config.SendMail}
}

func (n *MailRoutingNotifier) DocumentRouted(ctx context.Context, doc models.TrackedDocument, actor Actor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	location, ok := n.catalog.Location(doc.Location)
	if !ok {
		return nil
	}
	to, ok := n.mailboxes[location.Department]
	if !ok {
		return nil
	}

	subject := fmt.Sprintf("[Document Tracker] %s routed to %s", doc.RoutingSlipNo, location.Name)
	body := fmt.Sprintf(
		"<p>Routing slip <b>%s</b> (%s) has been forwarded to <b>%s</b> by %s.</p>"+
			"<p>Agency: %s<br>Particulars: %s<br>Status: %s</p>",
		html.EscapeString(doc.RoutingSlipNo),
		html.EscapeString(doc.Type),
		html.EscapeString(location.Name),
		html.EscapeString(actor.Name),
		html.EscapeString(doc.Agency),
		html.EscapeString(doc.Particulars),
		html.EscapeString(doc.Status),
	)
	if err := n.send([]string{to}, subject, body); err != nil {
		return fmt.Errorf("failed to notify %s: %w", location.Department, err)
	}
	return nil
}
