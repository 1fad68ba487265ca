// Package export renders the dashboard state as a downloadable JSON document.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/hamed0406/uptimeboard/internal/classify"
	"github.com/hamed0406/uptimeboard/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Service struct {
	Service      string  `json:"service"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Status       string  `json:"status"`
	StatusText   string  `json:"statusText"`
	Uptime       float64 `json:"uptime"`
	ResponseTime int64   `json:"responseTime"`
}

type Document struct {
	Timestamp string    `json:"timestamp"`
	Services  []Service `json:"services"`
}

// Build converts snapshots into the export document, keeping their order.
func Build(now time.Time, snaps []domain.StatusSnapshot) Document {
	doc := Document{
		Timestamp: now.UTC().Format(timestampLayout),
		Services:  make([]Service, 0, len(snaps)),
	}
	for _, s := range snaps {
		status := string(s.State)
		text := classify.Label(classify.Unknown)
		if status == "" || s.State == domain.StateUnknown {
			status = string(domain.StateUnknown)
		} else {
			text = classify.Label(classify.Classify(s))
		}
		doc.Services = append(doc.Services, Service{
			Service:      s.Target,
			Name:         s.Name,
			Category:     s.Category,
			Status:       status,
			StatusText:   text,
			Uptime:       s.Uptime,
			ResponseTime: s.ResponseTimeMS,
		})
	}
	return doc
}

// Filename is the suggested download name, dated in UTC.
func Filename(now time.Time) string {
	return "uptime-export-" + now.UTC().Format("2006-01-02") + ".json"
}

// Write encodes doc indented by two spaces.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
