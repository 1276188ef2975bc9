package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })
	return exporter, tp
}

func TestStartEnd_Success(t *testing.T) {
	exporter, tp := setupExporter(t)

	_, span := Start(context.Background(), "ArticleRepo.Exists", attribute.String("article.slug", "hello"))
	End(span, nil)
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "ArticleRepo.Exists" {
		t.Errorf("unexpected span name %q", spans[0].Name)
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected status Ok, got %v", spans[0].Status.Code)
	}
	found := false
	for _, attr := range spans[0].Attributes {
		if attr.Key == "article.slug" && attr.Value.AsString() == "hello" {
			found = true
		}
	}
	if !found {
		t.Error("expected article.slug attribute")
	}
}

func TestStartEnd_Error(t *testing.T) {
	exporter, tp := setupExporter(t)

	_, span := Start(context.Background(), "ArticleRepo.Create")
	End(span, errors.New("insert failed"))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected status Error, got %v", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "insert failed" {
		t.Errorf("unexpected status description %q", spans[0].Status.Description)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestGetTracer(t *testing.T) {
	if GetTracer() == nil {
		t.Fatal("expected non-nil tracer")
	}
}
