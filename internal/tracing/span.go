// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName is the scope reported on spans started by this package.
const instrumentationName = "switchboard"

// Attribute keys used on selection and reload spans.
const (
	AttrUserID          = attribute.Key("selection.user_id")
	AttrModelID         = attribute.Key("selection.model_id")
	AttrSelectionSource = attribute.Key("selection.source")
	AttrSnapshotVersion = attribute.Key("snapshot.version")
	AttrReloadTrigger   = attribute.Key("reload.trigger")
	AttrModelCount      = attribute.Key("reload.model_count")
)

// StartSelectionSpan creates a span covering one model selection.
// When no global tracer provider is installed the returned span is a
// no-op, so callers never need to gate on tracing being enabled.
func StartSelectionSpan(ctx context.Context, userID string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "selection.select",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrUserID.String(userID),
			attribute.String("span.type", "selection"),
		),
	)
}

// RecordSelectionResult annotates the selection span with the outcome.
func RecordSelectionResult(span trace.Span, modelID, source string, version uint64) {
	if span == nil {
		return
	}

	span.SetAttributes(
		AttrModelID.String(modelID),
		AttrSelectionSource.String(source),
		AttrSnapshotVersion.Int64(int64(version)),
	)
}

// StartReloadSpan creates a span covering one catalog reload.
// Trigger names what started the reload ("startup", "sighup", "api",
// "watcher").
func StartReloadSpan(ctx context.Context, trigger string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "catalog.reload",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrReloadTrigger.String(trigger),
			attribute.String("span.type", "reload"),
		),
	)
}

// RecordReloadResult annotates the reload span with the loaded model count.
func RecordReloadResult(span trace.Span, modelCount int, version uint64) {
	if span == nil {
		return
	}

	span.SetAttributes(
		AttrModelCount.Int(modelCount),
		AttrSnapshotVersion.Int64(int64(version)),
	)
}

// EndSpan finishes a span, recording err as the span status when non-nil.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
