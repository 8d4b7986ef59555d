// Package validate checks inbound sensor payloads against the required-field
// contract shared by the HTTP form and MQTT ingest paths.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"airlog-server/internal/modules/telemetry/types"
)

// RequiredFields lists the payload field names every reading must carry,
// in wire order.
var RequiredFields = []string{"temperature", "humidity", "mq2Value", "mq135Value", "ldrValue"}

// Error reports which fields of a payload were absent or not numeric.
type Error struct {
	Missing []string
	Invalid []string
}

func (e *Error) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid numeric fields: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return "invalid reading payload"
	}
	return strings.Join(parts, "; ")
}

// ParseReading validates a raw payload, given as field name -> value where a
// nil value means the field was absent, and returns the fully typed reading
// input. All five sensor fields are required and must parse as decimal
// numbers. Missing-field detection takes precedence: if any field is absent
// the payload is rejected before numeric errors are considered relevant, and
// no partial result is returned.
func ParseReading(fields map[string]*string) (types.ReadingInput, error) {
	verr := &Error{}
	values := make(map[string]float64, len(RequiredFields))
	for _, name := range RequiredFields {
		raw, ok := fields[name]
		if !ok || raw == nil {
			verr.Missing = append(verr.Missing, name)
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			verr.Invalid = append(verr.Invalid, name)
			continue
		}
		values[name] = v
	}
	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return types.ReadingInput{}, fmt.Errorf("parse reading: %w", verr)
	}
	return types.ReadingInput{
		Temperature: values["temperature"],
		Humidity:    values["humidity"],
		MQ2Value:    values["mq2Value"],
		MQ135Value:  values["mq135Value"],
		LDRValue:    values["ldrValue"],
	}, nil
}
