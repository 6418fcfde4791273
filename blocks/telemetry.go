/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package blocks

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dirpx.dev/pxr/blocks")
var meter = otel.Meter("dirpx.dev/pxr/blocks")

const (
	pathAttr   = "pxr.block.path"
	reasonAttr = "pxr.block.reason"
)

var (
	registrations        metric.Int64Counter
	registrationFailures metric.Int64Counter
	makeFailures         metric.Int64Counter
	makeDuration         metric.Float64Histogram
)

func init() {
	var err error
	registrations, err = meter.Int64Counter(
		"blocks.registrations",
		metric.WithDescription("The number of accepted block registrations."),
	)
	if err != nil {
		panic("blocks: failed to init 'blocks.registrations' instrument")
	}

	registrationFailures, err = meter.Int64Counter(
		"blocks.registration.failures",
		metric.WithDescription("The number of dropped block registrations."),
	)
	if err != nil {
		panic("blocks: failed to init 'blocks.registration.failures' instrument")
	}

	makeFailures, err = meter.Int64Counter(
		"blocks.make.failures",
		metric.WithDescription("The number of failed block instantiations."),
	)
	if err != nil {
		panic("blocks: failed to init 'blocks.make.failures' instrument")
	}

	makeDuration, err = meter.Float64Histogram(
		"blocks.make.duration",
		metric.WithDescription("The duration of a successful block instantiation."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("blocks: failed to init 'blocks.make.duration' instrument")
	}
}

func measureRegistration(err error) {
	ctx := context.Background()
	if err == nil {
		registrations.Add(ctx, 1)
		return
	}
	attrs := attribute.NewSet(attribute.String(reasonAttr, reason(err)))
	registrationFailures.Add(ctx, 1, metric.WithAttributeSet(attrs))
}

// reason names the registration failure kind for metric attributes.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPath):
		return "path"
	case errors.Is(err, ErrInvalidFactory):
		return "factory"
	case errors.Is(err, ErrReturnType):
		return "return-type"
	case errors.Is(err, ErrDuplicatePath):
		return "duplicate"
	case errors.Is(err, ErrRegistryShutdown):
		return "shutdown"
	}
	return "other"
}

func startMake(ctx context.Context, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "blocks.Make", trace.WithAttributes(attribute.String(pathAttr, path)))
}

func endMake(ctx context.Context, span trace.Span, path string, d time.Duration, err error) {
	defer span.End()
	attrs := attribute.NewSet(attribute.String(pathAttr, path))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		makeFailures.Add(ctx, 1, metric.WithAttributeSet(attrs))
		return
	}
	makeDuration.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributeSet(attrs))
}
