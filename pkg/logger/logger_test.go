package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBufferLogger(t *testing.T, format string) (*Logger, *bytes.Buffer) {
	t.Helper()
	l, err := NewLogger(&Config{Level: DebugLevel, Format: format, AppName: "referralhub"})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	return l, buf
}

func TestJSONFormatterIncludesFields(t *testing.T) {
	l, buf := newBufferLogger(t, "json")
	orgID := primitive.NewObjectID()

	l.WithOrgID(orgID).WithField("code", "ABC123").Info("link resolved")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "link resolved" || entry["level"] != "info" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["org_id"] != orgID.Hex() || entry["code"] != "ABC123" || entry["app"] != "referralhub" {
		t.Fatalf("fields missing: %v", entry)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(t, "json")
	child := l.WithField("campaign", "summer")
	_ = child

	l.Info("parent")
	if strings.Contains(buf.String(), "summer") {
		t.Fatalf("parent logger picked up child field: %s", buf.String())
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	l, buf := newBufferLogger(t, "text")
	ctx := ContextWithRequestID(context.Background(), "req-42")

	l.WithContext(ctx).Warn("slow click insert")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-42") || !strings.Contains(out, "WARN") {
		t.Fatalf("unexpected text output: %q", out)
	}
	if RequestIDFromContext(ctx) != "req-42" {
		t.Fatal("request id not readable from context")
	}
}

func TestSecurityEventSeverity(t *testing.T) {
	l, buf := newBufferLogger(t, "json")

	l.LogSecurityEvent("fraud_signal", "high", map[string]interface{}{"rule": "click_velocity"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["level"] != "error" || entry["rule"] != "click_velocity" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
