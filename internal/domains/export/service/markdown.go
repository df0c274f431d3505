package service

import (
	"fmt"
	"strings"

	"contentpilot-backend/internal/domains/export"
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func renderMarkdown(bundle *export.Bundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Campaign %s\n\n", bundle.CampaignID)
	fmt.Fprintf(&b, "Week of %s\n\n", bundle.WeekStart.Format("2006-01-02"))

	for _, item := range bundle.Items {
		fmt.Fprintf(&b, "## %s - %s\n\n", dayName(item.ScheduledDay), item.Stage)
		fmt.Fprintf(&b, "Objective: %s  \nStatus: %s\n\n", item.Objective, item.Status)

		if item.HasCopy {
			fmt.Fprintf(&b, "**%s**\n\n%s\n\n", item.Hook, item.Body)
			if item.CTA != "" {
				fmt.Fprintf(&b, "_%s_\n\n", item.CTA)
			}
		} else {
			b.WriteString("(no copy yet)\n\n")
		}

		for i, url := range item.ImageURLs {
			fmt.Fprintf(&b, "![slide %d](%s)\n", i+1, url)
		}
		if len(item.ImageURLs) > 0 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func dayName(weekday int) string {
	if weekday >= 0 && weekday < len(weekdayNames) {
		return weekdayNames[weekday]
	}
	return fmt.Sprintf("Day %d", weekday)
}
