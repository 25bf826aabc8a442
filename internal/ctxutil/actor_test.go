package ctxutil

import (
	"context"
	"testing"
)

func TestActorFromContext(t *testing.T) {
	ctx := context.Background()
	if got := ActorFromContext(ctx); got != "" {
		t.Errorf("ActorFromContext() = %q, want empty", got)
	}

	ctx = WithActorID(ctx, "head-7")
	if got := ActorFromContext(ctx); got != "head-7" {
		t.Errorf("ActorFromContext() = %q, want %q", got, "head-7")
	}
}

func TestRequestMetaFromContext(t *testing.T) {
	ctx := context.Background()
	if got := RequestMetaFromContext(ctx); got != (RequestMeta{}) {
		t.Errorf("RequestMetaFromContext() = %+v, want zero", got)
	}

	meta := RequestMeta{IPAddress: "10.0.0.4", UserAgent: "slawatch-cli"}
	ctx = WithRequestMeta(ctx, meta)
	if got := RequestMetaFromContext(ctx); got != meta {
		t.Errorf("RequestMetaFromContext() = %+v, want %+v", got, meta)
	}
}
