package evmap_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/go-leftright/evmap/evmap"
)

func TestScenarioBasicInsertAndPublish(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Insert("b", 2).Publish()

	assert.Equal(t, 2, r.Len())
	vals, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, []int{1}, vals)
}

func TestScenarioMultisetInsertAndRemove(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Insert("a", 2).Publish()
	vals, ok := r.Get("a")
	require.True(t, ok)
	assert.Len(t, vals, 2)

	w.RemoveValue("a", 1).Publish()
	vals, ok = r.Get("a")
	require.True(t, ok)
	assert.Equal(t, []int{2}, vals)
}

func TestScenarioRemoveEntry(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Publish()
	w.RemoveEntry("a").Publish()

	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestScenarioConcurrentReadersObserveAtomicSwap(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	seen := make([]int, 8)
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		i := i
		reader := r.Clone()
		g.Go(func() error {
			defer reader.Close()
			for ctx.Err() == nil {
				n := reader.Len()
				if n != 0 && n != 4 {
					t.Errorf("reader observed torn length %d, want 0 or 4", n)
				}
				seen[i] = n
			}
			return nil
		})
	}

	w.Insert("a", 1).Insert("b", 2).Insert("c", 3).Insert("d", 4)
	w.Publish()
	cancel()
	require.NoError(t, g.Wait())
	r.Close()
}

func TestScenarioConcurrentWritersBehindMutex(t *testing.T) {
	w, r := evmap.NewBasic[int, int]()
	defer w.Close()
	defer r.Close()

	var mu sync.Mutex
	var g errgroup.Group
	for i := 0; i < 4; i++ {
		i := i
		g.Go(func() error {
			mu.Lock()
			defer mu.Unlock()
			w.Insert(i, i).Publish()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 4, r.Len())
}

func TestScenarioPublishWaitsForPinnedReader(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Publish()

	guard, ok := r.Enter()
	require.True(t, ok)

	done := make(chan struct{})
	go func() {
		w.RemoveEntry("a").Publish()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("publish returned while reader was still pinned")
	default:
	}

	_, present := guard.Get("a")
	assert.True(t, present)
	guard.Close()

	<-done
	_, ok = r.Get("a")
	assert.False(t, ok)
}

func TestUpdateReplacesWholeBag(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Insert("a", 2).Publish()
	w.Update("a", 9).Publish()

	vals, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, []int{9}, vals)
}

func TestRetainAcrossTwoCopies(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Insert("a", 2).Insert("a", 3).Insert("a", 4).Publish()

	decisions := map[int]bool{}
	pred := func(v int, first bool) bool {
		if first {
			keep := v%2 == 0
			decisions[v] = keep
			return keep
		}
		return decisions[v]
	}
	w.Retain("a", pred).Publish()
	w.Publish() // second copy replay must reach the same decision

	vals, ok := r.Get("a")
	require.True(t, ok)
	sort.Ints(vals)
	assert.Equal(t, []int{2, 4}, vals)
}

func TestPurgeKeepsKeysEmptiesBags(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 1).Insert("b", 2).Publish()
	w.Purge().Publish()

	assert.Equal(t, 2, r.Len())
	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.True(t, r.ContainsKey("a"))
}

func TestMetaRoundTrips(t *testing.T) {
	w, r := evmap.New[string, int, string](evmap.WithMeta[string, int, string]("v1"))
	defer w.Close()
	defer r.Close()

	w.Publish()
	meta, ok := r.Meta()
	require.True(t, ok)
	assert.Equal(t, "v1", meta)

	w.SetMeta("v2").Publish()
	meta, ok = r.Meta()
	require.True(t, ok)
	assert.Equal(t, "v2", meta)
}

func TestMarkReadyFlag(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	g, ok := r.Enter()
	require.True(t, ok)
	assert.False(t, g.IsReady())
	g.Close()

	w.MarkReady().Publish()
	g, ok = r.Enter()
	require.True(t, ok)
	assert.True(t, g.IsReady())
	g.Close()
}

func TestEmptyAtDropsAscendingPositions(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("a", 10).Insert("a", 20).Insert("a", 30).Publish()
	w.EmptyAt("a", []int{0}).Publish()

	vals, ok := r.Get("a")
	require.True(t, ok)
	sort.Ints(vals)
	assert.Equal(t, []int{20, 30}, vals)
}

func TestClosedReaderCannotEnter(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	reader := r.Clone()
	w.Insert("a", 1).Publish()
	w.Close()

	_, ok := reader.Enter()
	assert.False(t, ok)
	reader.Close()
	r.Close()
}

func TestReadHandleFactoryProducesIndependentHandles(t *testing.T) {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	factory := r.Factory()
	r2 := factory.NewReadHandle()
	defer r2.Close()

	w.Insert("a", 1).Publish()
	assert.Equal(t, r.Len(), r2.Len())
}
