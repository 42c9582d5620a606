package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "holydeo/internal/adapters/redis"
	"holydeo/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_SetGetDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	price := 150.0
	in := domain.Calendar{
		"2024-06-15": {Type: domain.DayManual},
		"2024-06-20": {SpecialPrice: &price},
	}
	if err := c.Set(ctx, "calendar:1:a:b", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.Calendar
	ok, err := c.Get(ctx, "calendar:1:a:b", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out["2024-06-15"].Type != domain.DayManual {
		t.Fatalf("unexpected cached value: %+v", out)
	}
	if sp := out["2024-06-20"].SpecialPrice; sp == nil || *sp != 150.0 {
		t.Fatalf("special price did not survive the round trip: %+v", out)
	}

	if err := c.Del(ctx, "calendar:1:a:b"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = c.Get(ctx, "calendar:1:a:b", &out)
	if err != nil {
		t.Fatalf("Get after Del: %v", err)
	}
	if ok {
		t.Fatalf("expected miss after Del")
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := newTestCache(t)
	var out domain.Calendar
	ok, err := c.Get(context.Background(), "nope", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for absent key")
	}
}
