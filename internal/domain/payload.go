package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrUnexpectedPayload is returned when a feed body is neither a record
// array nor an object carrying a waitTime array.
var ErrUnexpectedPayload = errors.New("unexpected API payload format")

// FeedText is a loosely typed feed value. The feed sends wait times as
// strings or bare numbers; null and absent fields leave Present false.
type FeedText struct {
	Value   string
	Present bool
}

// Text builds a present FeedText, mostly for tests and fixtures.
func Text(s string) FeedText {
	return FeedText{Value: s, Present: true}
}

// UnmarshalJSON accepts strings, numbers and booleans. Other JSON values
// are kept as their compact source text.
func (t *FeedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = FeedText{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("parse feed number %q: %w", data, err)
		}
		*t = Text(strconv.FormatFloat(f, 'f', -1, 64))
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*t = Text(buf.String())
	}
	return nil
}

// MarshalJSON writes present values as strings and absent ones as null.
func (t FeedText) MarshalJSON() ([]byte, error) {
	if !t.Present {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// RawFeedRecord is one upstream record. Unknown fields are ignored.
type RawFeedRecord struct {
	HospName     FeedText `json:"hospName"`
	HospitalName FeedText `json:"hospitalName"`
	T1WT         FeedText `json:"t1wt"`
	T2WT         FeedText `json:"t2wt"`
	T3P50        FeedText `json:"t3p50"`
	T3P95        FeedText `json:"t3p95"`
	T45P50       FeedText `json:"t45p50"`
	T45P95       FeedText `json:"t45p95"`
	UpdateTime   FeedText `json:"updateTime"`
}

// PayloadShape tags which of the two accepted body layouts was received.
type PayloadShape int

const (
	// ShapeArray is a bare array of records with no batch timestamp.
	ShapeArray PayloadShape = iota + 1
	// ShapeObject is {"waitTime": [...], "updateTime": "..."}.
	ShapeObject
)

func (s PayloadShape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	default:
		return "unknown"
	}
}

// FeedBatch is a decoded payload in its single internal form.
type FeedBatch struct {
	Shape      PayloadShape
	Records    []RawFeedRecord
	UpdateTime string
}

type objectPayload struct {
	WaitTime   json.RawMessage `json:"waitTime"`
	UpdateTime json.RawMessage `json:"updateTime"`
}

// DecodePayload inspects the body shape once and returns the batch.
// Array elements that are not objects decode as empty records, which the
// validity check later drops.
func DecodePayload(body []byte) (FeedBatch, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return FeedBatch{}, ErrUnexpectedPayload
	}

	switch body[0] {
	case '[':
		records, err := decodeRecords(body)
		if err != nil {
			return FeedBatch{}, err
		}
		return FeedBatch{Shape: ShapeArray, Records: records}, nil

	case '{':
		var obj objectPayload
		if err := json.Unmarshal(body, &obj); err != nil {
			return FeedBatch{}, fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
		}
		list := bytes.TrimSpace(obj.WaitTime)
		if len(list) == 0 || list[0] != '[' {
			return FeedBatch{}, ErrUnexpectedPayload
		}
		records, err := decodeRecords(list)
		if err != nil {
			return FeedBatch{}, err
		}

		// A non-string batch timestamp is ignored.
		var updateTime string
		if len(obj.UpdateTime) > 0 {
			_ = json.Unmarshal(obj.UpdateTime, &updateTime)
		}
		return FeedBatch{Shape: ShapeObject, Records: records, UpdateTime: updateTime}, nil
	}

	return FeedBatch{}, ErrUnexpectedPayload
}

func decodeRecords(data []byte) ([]RawFeedRecord, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedPayload, err)
	}
	records := make([]RawFeedRecord, len(elems))
	for i, elem := range elems {
		var rec RawFeedRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			continue
		}
		records[i] = rec
	}
	return records, nil
}
