package dav

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/emersion/go-ical"
)

// productID identifies this application in generated calendars.
const productID = "-//taskify//EN"

// propTaskStatus carries the exact local status alongside the standard
// STATUS property, which collapses in_progress and completed into
// CONFIRMED and would otherwise lose the distinction on a round trip.
const propTaskStatus = "X-TASKIFY-STATUS"

// EncodeTask serializes a task as a VCALENDAR/VEVENT document.
func EncodeTask(t *model.Task, now time.Time) (string, error) {
	event := ical.NewComponent(ical.CompEvent)
	event.Props.SetText(ical.PropUID, t.CalDAVUID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, t.StartTime.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, t.EndTime.UTC())
	event.Props.SetText(ical.PropSummary, t.Title)
	if t.Description != "" {
		event.Props.SetText(ical.PropDescription, t.Description)
	}
	event.Props.SetText(ical.PropStatus, icalStatus(t.Status))
	exact := ical.NewProp(propTaskStatus)
	exact.Value = string(t.Status)
	event.Props.Set(exact)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, event)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.String(), nil
}

// icalStatus maps the local task status onto the iCalendar STATUS
// values the remote server understands. Only pending is distinguishable
// on the remote side; X-TASKIFY-STATUS preserves the rest.
func icalStatus(s model.TaskStatus) string {
	if s == model.StatusPending {
		return "TENTATIVE"
	}
	return "CONFIRMED"
}
