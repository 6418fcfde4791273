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

package proxy

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dirpx.dev/pxr/proxy")
var meter = otel.Meter("dirpx.dev/pxr/proxy")

const (
	// envAttr is the attribute key carrying the environment kind, so call
	// metrics can be split between local and bridged calls.
	envAttr = "pxr.env"
	// methodAttr is the attribute key carrying the call name on spans.
	methodAttr = "pxr.method"
)

var (
	// callDuration measures the duration of successful dynamic calls.
	callDuration metric.Float64Histogram
	// callFailures counts dynamic calls that returned an error.
	callFailures metric.Int64Counter
)

func init() {
	var err error
	callDuration, err = meter.Float64Histogram(
		"proxy.call.duration",
		metric.WithDescription("The duration of a successful dynamic call, including argument conversion."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("proxy: failed to init 'proxy.call.duration' instrument")
	}

	callFailures, err = meter.Int64Counter(
		"proxy.call.failures",
		metric.WithDescription("The number of dynamic calls that have failed."),
	)
	if err != nil {
		panic("proxy: failed to init 'proxy.call.failures' instrument")
	}
}

func startCall(ctx context.Context, env Environment, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "proxy.Call", trace.WithAttributes(
		attribute.String(envAttr, env.Name()),
		attribute.String(methodAttr, name),
	))
}

// endCall records the call outcome on span and in the call metrics.
func endCall(ctx context.Context, span trace.Span, env Environment, d time.Duration, err error) {
	defer span.End()
	attrs := attribute.NewSet(attribute.String(envAttr, env.Name()))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		callFailures.Add(ctx, 1, metric.WithAttributeSet(attrs))
		return
	}
	callDuration.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributeSet(attrs))
}
