package ctxutil

import (
	"context"
	"testing"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); got != nil {
		t.Fatalf("no trace data: want=nil got=%v", got)
	}
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1"})
	got := LogFields(ctx)
	if len(got) != 2 || got[0] != "trace_id" || got[1] != "t1" {
		t.Fatalf("LogFields: got=%v", got)
	}
	ctx = WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	if got := LogFields(ctx); len(got) != 4 || got[3] != "r1" {
		t.Fatalf("LogFields with request id: got=%v", got)
	}
}
