package timeline

import (
	"errors"
	"path/filepath"
	"strings"
)

// Years are the five fixed target years rendered by every generation run.
var Years = []int{2030, 2040, 2050, 2060, 2070}

// Status is the lifecycle of one year's card. The only transitions are
// pending -> success and pending -> failed; a settled year is not retried
// within the same run.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

var (
	// ErrNoUpload is returned when generation is triggered before a
	// portrait has been uploaded. No requests are issued.
	ErrNoUpload = errors.New("no portrait uploaded")
	// ErrRunInFlight is returned when generation is triggered while a
	// previous run has unsettled years.
	ErrRunInFlight = errors.New("a generation run is already in flight")
	// ErrUnknownYear is returned for years outside the fixed timeline.
	ErrUnknownYear = errors.New("unknown timeline year")
	// ErrRenderNotReady is returned when a year's card is not in the
	// success state.
	ErrRenderNotReady = errors.New("no successful render for this year")
)

// Upload describes the portrait currently owned by the orchestrator. The
// bytes live in the blob store under PreviewKey; BaseName names downloads.
type Upload struct {
	BaseName   string
	MIME       string
	PreviewKey string
}

// ResultCard tracks one year's generation attempt.
type ResultCard struct {
	Year     int    `json:"year"`
	Status   Status `json:"status"`
	MIME     string `json:"mime,omitempty"`
	Reason   string `json:"reason,omitempty"`
	ImageKey string `json:"-"`
}

// State is a copy of the orchestrator's observable state, safe to hand to
// the presentation layer.
type State struct {
	InProgress bool         `json:"in_progress"`
	RunID      string       `json:"run_id,omitempty"`
	HasUpload  bool         `json:"has_upload"`
	BaseName   string       `json:"base_name,omitempty"`
	PreviewKey string       `json:"preview_key,omitempty"`
	Smoking    int          `json:"smoking"`
	SunExp     int          `json:"sun_exposure"`
	Stress     int          `json:"stress"`
	Cards      []ResultCard `json:"cards"`
}

// baseName derives the download base name from an uploaded filename:
// extension stripped, path separators and spaces removed, with a fallback
// when nothing printable survives.
func baseName(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "portrait"
	}
	return b.String()
}
