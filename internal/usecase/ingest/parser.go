package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Savit10/streamsense/internal/domain/feature"
	"github.com/Savit10/streamsense/internal/errs"
)

// Error kinds for dropped events. Both are non-fatal to the loop: the
// offending payload is counted and skipped, valid traffic keeps flowing.
var (
	// ErrMalformedPayload covers undecodable JSON, wrong field types and
	// unparseable timestamps.
	ErrMalformedPayload = errors.New("malformed event payload")
	// ErrInvalidEvent covers structurally sound payloads that fail
	// validation: missing required fields or an unknown event type.
	ErrInvalidEvent = errors.New("invalid event")
)

// Parser turns raw queue payloads into validated domain events. It tries
// each configured dialect in order and uses the first whose type field is
// present in the payload.
type Parser struct {
	dialects []Dialect
}

func NewParser(dialects []Dialect) *Parser {
	if len(dialects) == 0 {
		dialects = DefaultDialects()
	}
	return &Parser{dialects: dialects}
}

// Parse validates and normalizes one payload. Partition and offset are
// source metadata and are not the parser's concern; the loop fills them in.
func (p *Parser) Parse(payload []byte) (feature.Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return feature.Event{}, errs.Wrap(ErrMalformedPayload, "decode json object")
	}

	dialect, ok := p.matchDialect(fields)
	if !ok {
		return feature.Event{}, errs.Wrap(ErrInvalidEvent, "no dialect matches payload")
	}

	rawType, ok := fields[dialect.TypeField]
	if !ok {
		return feature.Event{}, errs.Wrapf(ErrInvalidEvent, "%s is required", dialect.TypeField)
	}
	var typeName string
	if err := json.Unmarshal(rawType, &typeName); err != nil {
		return feature.Event{}, errs.Wrapf(ErrMalformedPayload, "field %s", dialect.TypeField)
	}
	eventType, err := feature.ParseEventType(typeName)
	if err != nil {
		return feature.Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	rawUser, ok := fields[dialect.UserField]
	if !ok {
		return feature.Event{}, errs.Wrapf(ErrInvalidEvent, "%s is required", dialect.UserField)
	}
	var userID uint64
	if err := json.Unmarshal(rawUser, &userID); err != nil {
		return feature.Event{}, errs.Wrapf(ErrMalformedPayload, "field %s", dialect.UserField)
	}

	rawTime, ok := fields[dialect.TimeField]
	if !ok {
		return feature.Event{}, errs.Wrapf(ErrInvalidEvent, "%s is required", dialect.TimeField)
	}
	var timeText string
	if err := json.Unmarshal(rawTime, &timeText); err != nil {
		return feature.Event{}, errs.Wrapf(ErrMalformedPayload, "field %s", dialect.TimeField)
	}
	timestamp, err := parseTimestamp(timeText)
	if err != nil {
		return feature.Event{}, errs.Wrapf(ErrMalformedPayload, "timestamp %q", timeText)
	}

	event := feature.Event{
		UserID:    userID,
		Type:      eventType,
		Timestamp: timestamp,
	}

	if dialect.ItemField != "" {
		if rawItem, present := fields[dialect.ItemField]; present {
			var itemID int64
			if err := json.Unmarshal(rawItem, &itemID); err != nil {
				return feature.Event{}, errs.Wrapf(ErrMalformedPayload, "field %s", dialect.ItemField)
			}
			event.ItemID = &itemID
		}
	}

	return event, nil
}

func (p *Parser) matchDialect(fields map[string]json.RawMessage) (Dialect, bool) {
	for _, dialect := range p.dialects {
		if _, ok := fields[dialect.TypeField]; ok {
			return dialect, true
		}
	}
	return Dialect{}, false
}

// timestampLayouts accepts ISO-8601 with optional fractional seconds, with
// or without a zone suffix. Producers emitting naive local-format stamps
// are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(text string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", text)
}
