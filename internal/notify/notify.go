// Package notify dispatches the order notification email.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/pkordes/boutique/internal/domain"
)

// Notifier sends a notification for a newly placed order.
type Notifier interface {
	NotifyOrder(ctx context.Context, o domain.Order) error
}

var orderTmpl = template.Must(template.New("order").Parse(`<!doctype html>
<html>
<body>
<h1>New order</h1>
<p>Order <code>{{.ID}}</code> from <a href="mailto:{{.Email}}">{{.Email}}</a>
placed {{.CreatedAt.Format "2006-01-02 15:04 MST"}}.</p>
<table>
<thead><tr><th>Product</th><th>Price</th></tr></thead>
<tbody>
{{- range .Lines}}
<tr><td>{{.Name}}</td><td>{{.Price.StringFixed 2}}</td></tr>
{{- end}}
</tbody>
<tfoot><tr><th>Total</th><th>{{.Total.StringFixed 2}}</th></tr></tfoot>
</table>
</body>
</html>
`))

// RenderOrder renders the HTML body of the order email.
func RenderOrder(o domain.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderTmpl.Execute(&buf, o); err != nil {
		return "", fmt.Errorf("notify.RenderOrder: %w", err)
	}
	return buf.String(), nil
}

// Subject returns the email subject line for o.
func Subject(o domain.Order) string {
	return fmt.Sprintf("New order from %s (%s)", o.Email, o.Total.StringFixed(2))
}

// LogNotifier writes the notification to the log instead of sending it.
// It is used when no SMTP server is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyOrder logs the order summary.
func (n *LogNotifier) NotifyOrder(ctx context.Context, o domain.Order) error {
	n.logger.InfoContext(ctx, "order notification",
		"order_id", o.ID,
		"email", o.Email,
		"lines", len(o.Lines),
		"total", o.Total.StringFixed(2),
	)
	return nil
}
