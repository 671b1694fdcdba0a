package quotecache_test

import (
	"context"
	"testing"
	"time"

	"dashsync/internal/dashboard/quotecache"
)

// go test -v --run TestMirrorRoundTrip
func TestMirrorRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mirror, err := quotecache.New(ctx, "localhost:6379", "", 0)
	if err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	defer mirror.Close()

	quotes := map[string]float64{
		"btc": 65000.12, "eth": 3005.00, "doge": 0.1234,
	}
	if err := mirror.SetQuotes(ctx, quotes); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := mirror.Quote(ctx, "doge")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != 0.1234 {
		t.Errorf("mirrored doge quote = %v, want 0.1234", got)
	}
}
