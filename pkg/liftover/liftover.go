// Package liftover remaps intervals between genome assemblies through the
// Ensembl REST coordinate mapping endpoint.
package liftover

import (
	"context"
	"fmt"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
	"github.com/jgbaldwinbrown/posbed/pkg/position"
)

// Reason tags why a lookup failed. Callers that only care about success can
// ignore it.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonRequest          Reason = "request"
	ReasonNetwork          Reason = "network"
	ReasonTimeout          Reason = "timeout"
	ReasonHTTPStatus       Reason = "http_status"
	ReasonMalformed        Reason = "malformed_response"
	ReasonNoMapping        Reason = "no_mapping"
	ReasonMultipleMappings Reason = "multiple_mappings"
)

// Result is the outcome of one lookup. When OK is false, Interval is the
// zero value and Reason/Detail describe the failure.
type Result struct {
	Interval position.Interval
	OK       bool
	Reason   Reason
	Detail   string
}

func Mapped(iv position.Interval) Result {
	return Result{Interval: iv, OK: true}
}

func Failed(reason Reason, format string, args ...any) Result {
	return Result{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Lifter remaps one interval. Implementations never return errors; every
// failure is folded into the Result.
type Lifter interface {
	Lift(ctx context.Context, iv position.Interval, from, to assembly.ID) Result
}

// LifterFunc adapts a function to the Lifter interface.
type LifterFunc func(ctx context.Context, iv position.Interval, from, to assembly.ID) Result

func (f LifterFunc) Lift(ctx context.Context, iv position.Interval, from, to assembly.ID) Result {
	return f(ctx, iv, from, to)
}
