package report

import (
	"fmt"
	"strings"
)

// renderPlain derives the plain-text body. Layout follows the manual-action
// queue format: run summary first, then every section with numbered items.
func renderPlain(rep Report) string {
	var sb strings.Builder

	sb.WriteString("Reddit engagement queue (manual actions)\n\n")
	if rep.RoutineNote != "" {
		sb.WriteString(rep.RoutineNote + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("Items collected: %d\n", rep.Collected))
	if rep.ArtifactPath != "" {
		sb.WriteString(fmt.Sprintf("Saved: %s\n", rep.ArtifactPath))
	}

	for _, section := range rep.Sections {
		sb.WriteString(fmt.Sprintf("\n== %s ==\n", section.Title))
		if len(section.Items) == 0 {
			sb.WriteString("none\n")
			continue
		}
		for i, item := range section.Items {
			sb.WriteString(fmt.Sprintf("%d. [%s] %s prio %d age %dh signals %s\n",
				i+1, item.Feed, item.Category, item.Priority, item.AgeHours, joinSignals(item.Signals)))
			sb.WriteString("   " + item.Title + "\n")
			sb.WriteString("   " + item.URL + "\n")
			if item.Opener != "" {
				sb.WriteString("   Opener: " + item.Opener + "\n")
			}
			if rep.ActionNote != "" {
				sb.WriteString("   " + rep.ActionNote + "\n")
			}
		}
	}

	if rep.Collected == 0 {
		sb.WriteString("\nNo new items in the selected backfill window.\n")
	}

	return sb.String()
}

func joinSignals(signals []string) string {
	if len(signals) == 0 {
		return "-"
	}
	return strings.Join(signals, ",")
}
