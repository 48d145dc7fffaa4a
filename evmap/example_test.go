package evmap_test

import (
	"fmt"
	"sort"

	"github.com/go-leftright/evmap/evmap"
)

// Example demonstrates the basic insert/publish/read cycle: writes are
// invisible to readers until Publish is called.
func Example() {
	w, r := evmap.NewBasic[string, int]()
	defer w.Close()
	defer r.Close()

	w.Insert("fruit", 1).Insert("fruit", 2).Insert("veg", 3)
	fmt.Println("before publish:", r.Len())

	w.Publish()
	fmt.Println("after publish:", r.Len())

	vals, _ := r.Get("fruit")
	sort.Ints(vals)
	fmt.Println("fruit:", vals)

	// Output:
	// before publish: 0
	// after publish: 2
	// fruit: [1 2]
}
