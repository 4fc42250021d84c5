// internal/gui/status.go
// Status line with pipeline state and frame statistics
package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"live-hair-tint/internal/metrics"
	"live-hair-tint/internal/pipeline"
)

// StatusBar renders the last coordinator snapshot and frame stats
type StatusBar struct {
	label *widget.Label
	stats func() (metrics.Stats, bool)
	snap  pipeline.Snapshot
}

func NewStatusBar(stats func() (metrics.Stats, bool)) *StatusBar {
	sb := &StatusBar{
		label: widget.NewLabel(""),
		stats: stats,
	}
	sb.label.Truncation = fyne.TextTruncateEllipsis
	sb.render()
	return sb
}

// Update stores snap; UI thread only
func (sb *StatusBar) Update(snap pipeline.Snapshot) {
	sb.snap = snap
	sb.render()
}

// Tick refreshes frame statistics; UI thread only
func (sb *StatusBar) Tick() {
	sb.render()
}

func (sb *StatusBar) render() {
	sb.label.SetText(formatStatus(sb.snap, sb.stats))
}

func formatStatus(snap pipeline.Snapshot, stats func() (metrics.Stats, bool)) string {
	parts := []string{snap.State.String()}
	if snap.Config != "" {
		parts = append(parts, "#"+string(snap.Config))
	}

	if snap.State == pipeline.StateActive && stats != nil {
		if st, ok := stats(); ok {
			parts = append(parts, fmt.Sprintf("%.1f fps", st.FPS))
			if st.MeanLatency > 0 {
				parts = append(parts, fmt.Sprintf("%d ms", st.MeanLatency.Milliseconds()))
			}
			if st.Dropped > 0 {
				parts = append(parts, fmt.Sprintf("%d dropped", st.Dropped))
			}
		}
	}

	if snap.InstanceID != "" && len(snap.InstanceID) >= 8 {
		parts = append(parts, "instance "+snap.InstanceID[:8])
	}
	return strings.Join(parts, " · ")
}
