package evmap_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-leftright/evmap/evmap"
)

// BenchmarkMap measures read throughput against varying reader counts while
// a single writer continuously inserts and periodically publishes, mirroring
// the engine's single-writer, many-reader scheduling model.
func BenchmarkMap(b *testing.B) {
	var testCases = []struct {
		readers      int
		keys         int
		refreshEvery int
		duration     time.Duration
	}{
		{10, 10000, 1000, 2 * time.Second},
		{100, 100000, 1000, 2 * time.Second},
		{1000, 100000, 1000, 2 * time.Second},
	}

	for _, c := range testCases {
		b.Run(fmt.Sprintf("%v/%v/%v/%v", c.readers, c.keys, c.refreshEvery, c.duration), func(b *testing.B) {
			w, r := evmap.NewBasic[int, int]()
			defer w.Close()
			defer r.Close()

			readsPerSecond, writesPerSecond := driveMap(b, mapBenchParams{
				Readers:      c.readers,
				Keys:         c.keys,
				RefreshEvery: c.refreshEvery,
				Duration:     c.duration,
			}, w, r)
			b.ReportMetric(readsPerSecond, "rps")
			b.ReportMetric(writesPerSecond, "wps")
		})
	}
}

type mapBenchParams struct {
	Readers      int
	Keys         int
	RefreshEvery int
	Duration     time.Duration
}

func driveMap(b *testing.B, params mapBenchParams, w *evmap.WriteHandle[int, int, struct{}], r *evmap.ReadHandle[int, int, struct{}]) (float64, float64) {
	start := time.Now()
	wg := sync.WaitGroup{}

	wg.Add(1)
	writesChan := make(chan int, 1)
	go func() {
		defer wg.Done()
		writes := 0
		defer func() { writesChan <- writes }()
		sinceRefresh := 0
		for time.Since(start) < params.Duration {
			k := rand.Intn(params.Keys)
			w.Insert(k, k)
			writes++
			sinceRefresh++
			if sinceRefresh >= params.RefreshEvery {
				w.Publish()
				sinceRefresh = 0
			}
		}
		w.Publish()
	}()

	readsChan := make(chan int, params.Readers)
	for i := 0; i < params.Readers; i++ {
		wg.Add(1)
		go func() {
			reads := 0
			reader := r.Clone()
			defer reader.Close()
			defer wg.Done()
			defer func() { readsChan <- reads }()
			for time.Since(start) < params.Duration {
				k := rand.Intn(params.Keys)
				reader.Get(k)
				reads++
			}
		}()
	}

	wg.Wait()
	close(writesChan)
	close(readsChan)

	var totalReads, totalWrites float64
	for reads := range readsChan {
		totalReads += float64(reads)
	}
	for writes := range writesChan {
		totalWrites += float64(writes)
	}
	return totalReads / params.Duration.Seconds(), totalWrites / params.Duration.Seconds()
}
