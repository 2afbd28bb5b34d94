package notify

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event is one dispatched server-sent event.
type Event struct {
	ID    string
	Type  string
	Data  string
	Retry time.Duration
}

// eventReader parses a text/event-stream body. retry and lastID keep the
// latest values seen on the stream, even from events without data.
type eventReader struct {
	r      *bufio.Reader
	retry  time.Duration
	lastID string
}

func newEventReader(r io.Reader) *eventReader {
	return &eventReader{r: bufio.NewReader(r)}
}

// next returns the next event with data. Events without data lines are
// skipped.
func (er *eventReader) next() (Event, error) {
	var (
		ev      Event
		data    []string
		hasData bool
	)
	for {
		line, err := er.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if hasData {
				ev.Data = strings.Join(data, "\n")
				if ev.Type == "" {
					ev.Type = "message"
				}
				return ev, nil
			}
			ev.Type = ""
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Type = value
		case "data":
			data = append(data, value)
			hasData = true
		case "id":
			if !strings.Contains(value, "\x00") {
				ev.ID = value
				er.lastID = value
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				ev.Retry = time.Duration(ms) * time.Millisecond
				er.retry = ev.Retry
			}
		}
	}
}
