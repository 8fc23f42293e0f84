package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/waypoint/internal/runtime"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
)

type instantFactory struct{}

func (instantFactory) NewTour(id string, hooks ...domain.LifecycleHooks) *runtime.App {
	return runtime.NewApp(id, runtime.WithTransitionDelay(0), runtime.WithSubmitDelay(0), runtime.WithLifecycleHooks(merge(hooks)))
}

func (instantFactory) Restore(snap *domain.Snapshot, hooks ...domain.LifecycleHooks) *runtime.App {
	return runtime.Restore(snap, runtime.WithTransitionDelay(0), runtime.WithSubmitDelay(0), runtime.WithLifecycleHooks(merge(hooks)))
}

func merge(hooks []domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out = out.Merge(h)
	}
	return out
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(instantFactory{}, memory.NewStore())
	ctx := context.Background()
	count := 2000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Open(ctx, sid)
		_ = mgr.Close(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Close", lockCount)
	}
	if appCount := len(mgr.apps); appCount != 0 {
		t.Errorf("%d live sessions remaining after Close", appCount)
	}
}

func TestSaver_DropsStaleRevisions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	s := newSaver(store, "s", 0, nil)

	s.save(ctx, &domain.Snapshot{SessionID: "s", Revision: 3, Draft: domain.Draft{Title: "new"}})
	s.save(ctx, &domain.Snapshot{SessionID: "s", Revision: 2, Draft: domain.Draft{Title: "old"}})

	snap, err := store.Load(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Draft.Title != "new" {
		t.Errorf("stale revision overwrote newer snapshot: %q", snap.Draft.Title)
	}

	s.stop()
	s.save(ctx, &domain.Snapshot{SessionID: "s", Revision: 4, Draft: domain.Draft{Title: "late"}})
	snap, _ = store.Load(ctx, "s")
	if snap.Draft.Title != "new" {
		t.Errorf("stopped saver still wrote: %q", snap.Draft.Title)
	}
}
