package health

import (
	"context"
	"sync"
	"testing"
)

func TestCheckAll_EmptyRegistryIsHealthy(t *testing.T) {
	// In-memory mode registers nothing; the engine must still report up.
	r := NewRegistry()
	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("empty registry should be healthy")
	}
	if len(statuses) != 0 {
		t.Fatalf("expected 0 statuses, got %d", len(statuses))
	}
}

func TestCheckAll_AllSubsystemsHealthy(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) Status {
		return Status{Name: "database", Healthy: true}
	})
	r.Register("alert_feed", func(_ context.Context) Status {
		return Status{Name: "alert_feed", Healthy: true, Detail: "2 subscribers"}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("all-healthy registry should report healthy")
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Name != "database" || statuses[1].Name != "alert_feed" {
		t.Errorf("statuses out of registration order: %+v", statuses)
	}
}

func TestCheckAll_DatabaseDownDegradesAggregate(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(_ context.Context) Status {
		return Status{Name: "database", Healthy: false, Detail: "pq: connection refused"}
	})
	r.Register("alert_feed", func(_ context.Context) Status {
		return Status{Name: "alert_feed", Healthy: true}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Fatal("registry with a failing subsystem should report unhealthy")
	}
	if statuses[0].Detail != "pq: connection refused" {
		t.Fatalf("expected database detail to surface, got %q", statuses[0].Detail)
	}
	// The healthy subsystem still reports alongside the failing one.
	if !statuses[1].Healthy {
		t.Error("alert_feed status should remain healthy")
	}
}

func TestCheckAll_ContextReachesCheckers(t *testing.T) {
	type ctxKey string
	r := NewRegistry()
	r.Register("database", func(ctx context.Context) Status {
		if ctx.Value(ctxKey("deadline")) != "yes" {
			return Status{Name: "database", Healthy: false, Detail: "wrong context"}
		}
		return Status{Name: "database", Healthy: true}
	})

	ctx := context.WithValue(context.Background(), ctxKey("deadline"), "yes")
	healthy, _ := r.CheckAll(ctx)
	if !healthy {
		t.Error("checker did not receive the caller's context")
	}
}

func TestRegistry_ConcurrentRegisterAndCheck(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Register("database", func(_ context.Context) Status {
				return Status{Name: "database", Healthy: true}
			})
		}()
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CheckAll(context.Background())
		}()
	}
	wg.Wait()
}
