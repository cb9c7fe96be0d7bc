package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReloadApps Phase = iota
	FetchWeather
	FetchNotifications
	Complete
)

func (p Phase) String() string {
	switch p {
	case ReloadApps:
		return "reload_apps"
	case FetchWeather:
		return "fetch_weather"
	case FetchNotifications:
		return "fetch_notifications"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func reloadingUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReloadApps,
		Step:    step,
		Total:   total,
		Message: "Reloading installed apps...",
	}
}

func reloadedUpdate(step, total int, result *RefreshResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReloadApps,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%d apps installed, %d visible, %d favorites", result.Installed, result.Visible, result.Favorites),
		Data:    result,
	}
}

func weatherUpdate(step, total int, temp *int) ProgressUpdate {
	msg := "Weather unavailable"
	if temp != nil {
		msg = fmt.Sprintf("Current temperature: %d°C", *temp)
	}
	return ProgressUpdate{
		Phase:   FetchWeather,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    temp,
	}
}

func notificationsUpdate(step, total int, counts map[string]int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchNotifications,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%d apps with notifications", len(counts)),
		Data:    counts,
	}
}

func completeUpdate(result *RefreshResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Refreshed at %s", result.At.Format("15:04:05")),
		Data:    result,
	}
}
