package controller

import (
	"net/http"
	"time"

	"airlog-server/internal/modules/telemetry/validate"
)

const (
	// timestampFormat is the fixed wire format for reading and hour bucket
	// timestamps.
	timestampFormat = "2006-01-02 15:04:05"
	dayFormat       = "2006-01-02"

	weeklyWindow = 7 * 24 * time.Hour
)

// formFields maps the parsed form into the validator's field view: nil for
// absent fields, the first value otherwise. An empty string counts as
// present.
func formFields(r *http.Request) map[string]*string {
	fields := make(map[string]*string, len(validate.RequiredFields))
	for _, name := range validate.RequiredFields {
		vals, ok := r.PostForm[name]
		if !ok || len(vals) == 0 {
			continue
		}
		v := vals[0]
		fields[name] = &v
	}
	return fields
}
