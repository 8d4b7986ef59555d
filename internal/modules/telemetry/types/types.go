package types

import "time"

// ReadingInput holds the five sensor channels of one sample, already parsed.
type ReadingInput struct {
	Temperature float64
	Humidity    float64
	MQ2Value    float64
	MQ135Value  float64
	LDRValue    float64
}

// Reading is one persisted sensor sample. The timestamp is assigned by the
// server at ingestion time; readings are immutable once written.
type Reading struct {
	Temperature float64
	Humidity    float64
	MQ2Value    float64
	MQ135Value  float64
	LDRValue    float64
	Timestamp   time.Time
}

// Bucket is a derived aggregate of readings over one hour or one day,
// truncated to the start of the unit.
type Bucket struct {
	Start   time.Time
	MinTemp float64
	MaxTemp float64
	AvgTemp float64
}

// ReadingMessage is the wire shape of one sample as published by a device
// over MQTT. Fields are transmitted as strings, matching the HTTP form
// contract; a nil field is absent.
type ReadingMessage struct {
	Temperature *string `json:"temperature"`
	Humidity    *string `json:"humidity"`
	MQ2Value    *string `json:"mq2Value"`
	MQ135Value  *string `json:"mq135Value"`
	LDRValue    *string `json:"ldrValue"`
}
