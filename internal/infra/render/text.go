// internal/infra/render/text.go
package render

import (
	"context"
	"fmt"
	"strings"

	"deadline_notifier/internal/app"
)

const dateLayout = "02.01.2006"

// TextRenderer produces the plain-text deadline report. It never fails: the
// report is generated from the classified items alone and needs no external
// template or document store.
type TextRenderer struct{}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Render(_ context.Context, rc app.ReportContext) (*app.RenderedMessage, error) {
	subject := fmt.Sprintf("Deadline report - %s - %s", rc.OrganizationName, rc.Date.Format(dateLayout))

	var b strings.Builder
	fmt.Fprintf(&b, "Deadline report for %s\n", rc.ScopeName)
	fmt.Fprintf(&b, "Organization: %s\n", rc.OrganizationName)
	fmt.Fprintf(&b, "Date: %s\n\n", rc.Date.Format(dateLayout))

	if len(rc.Overdue) > 0 {
		fmt.Fprintf(&b, "OVERDUE (%d):\n", len(rc.Overdue))
		for _, item := range rc.Overdue {
			writeItem(&b, item)
		}
		b.WriteString("\n")
	}
	if len(rc.Upcoming) > 0 {
		fmt.Fprintf(&b, "UPCOMING (%d):\n", len(rc.Upcoming))
		for _, item := range rc.Upcoming {
			writeItem(&b, item)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: %d overdue, %d upcoming.\n", len(rc.Overdue), len(rc.Upcoming))

	return &app.RenderedMessage{
		Subject:  subject,
		BodyText: b.String(),
	}, nil
}

func writeItem(b *strings.Builder, item app.ReportItem) {
	fmt.Fprintf(b, "  - %s", item.Name)
	if item.Detail != "" {
		fmt.Fprintf(b, " (%s)", item.Detail)
	}
	if item.NextDate != nil {
		fmt.Fprintf(b, ": due %s", item.NextDate.Format(dateLayout))
		switch {
		case item.DaysUntil < 0:
			fmt.Fprintf(b, ", %d day(s) overdue", -item.DaysUntil)
		case item.DaysUntil == 0:
			b.WriteString(", due today")
		default:
			fmt.Fprintf(b, ", in %d day(s)", item.DaysUntil)
		}
	}
	b.WriteString("\n")
}
