// Package domain models Hospital Authority accident-and-emergency (A&E)
// waiting-time data and the pure functions that normalize, classify, sort
// and localize it.
//
// # Data Source
//
// The Hospital Authority publishes waiting times as JSON at two endpoints.
// A body is either a bare array of records or an object:
//
//	{"waitTime": [ {...}, ... ], "updateTime": "23/2/2026 10:15am"}
//
// DecodePayload resolves the shape once; everything after it works on a
// FeedBatch. The hospital name arrives as "hospName" or "hospitalName".
//
// # Metrics
//
// Each record reports up to six wait-time fields:
//
//	t1wt    triage I (critical), point value
//	t2wt    triage II (emergency), point value
//	t3p50   triage III (urgent), median
//	t3p95   triage III, 95th percentile
//	t45p50  triage IV and V (semi/non-urgent), median
//	t45p95  triage IV and V, 95th percentile
//
// Categories III and IV_V carry the p95 as an upper bound when it is
// present and not "-".
//
// # Wait-Time Text
//
// Values are free text drawn from a small vocabulary, parsed by
// ParseWaitingMinutes in this order:
//
//	"", "-", "n/a", "na"        unavailable (nil)
//	"45"                        45
//	"less than 1 hour"          59
//	"over 8 hours"              480
//	"1 hour 30 minutes"         90
//	"1.5 hours"                 90
//
// Anything else is unavailable. Statuses come from WaitThresholds.
//
// # Timestamps
//
// Update times are ISO-8601 with an offset, or the feed's own
// "d/m/yyyy h:mmam" form, which is read as Hong Kong time.
package domain
