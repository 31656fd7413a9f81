package domain

import (
	"errors"
	"time"
)

var (
	ErrPermissionRequired = errors.New("location permission required")
	ErrPermissionDenied   = errors.New("location permission denied")
)

// PermissionStatus mirrors what the device location service reports.
type PermissionStatus string

const (
	PermissionUndetermined PermissionStatus = "undetermined"
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
)

// LocationState is the tagged state of the acquisition state machine.
// Unlike the raw PermissionStatus it includes the transient Requesting
// phase while a prompt is in flight.
type LocationState string

const (
	StateUndetermined LocationState = "undetermined"
	StateRequesting   LocationState = "requesting"
	StateGranted      LocationState = "granted"
	StateDenied       LocationState = "denied"
)

// LocationSample is one reading of the device's current position.
// Nil auxiliary fields mean "unknown at the time of the sample", not zero.
type LocationSample struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
	Altitude  *float64 `json:"altitude"`
	Heading   *float64 `json:"heading"`
	Speed     *float64 `json:"speed"`
}

type Accuracy string

const (
	AccuracyLow      Accuracy = "low"
	AccuracyBalanced Accuracy = "balanced"
	AccuracyHigh     Accuracy = "high"
)

// AcquireOptions are device-level filtering hints. Tunable, not contractual.
type AcquireOptions struct {
	Accuracy        Accuracy
	MinInterval     time.Duration
	MinDisplacement float64 // meters
}

func DefaultAcquireOptions() AcquireOptions {
	return AcquireOptions{
		Accuracy:        AccuracyHigh,
		MinInterval:     10 * time.Second,
		MinDisplacement: 10,
	}
}
