// Command dchtdemo is a small, non-benchmarking smoke test for the dcht
// package: it builds a table, inserts keys 1 through 50, looks up and
// deletes one of them, and prints what it finds. It intentionally has no flags, no RNG seeding policy, and no
// timing — the CLI/benchmark harness proper is out of scope for this
// package (SPEC_FULL.md §1).
package main

import (
	"fmt"
	"log"

	"github.com/deadcafe/cuckoo-hash"
)

func main() {
	t, err := dcht.NewTable(256, dcht.WithEventFunc(logEvent))
	if err != nil {
		log.Fatalf("NewTable: %v", err)
	}

	for key := uint32(1); key <= 50; key++ {
		if err := t.Insert(key, key*10, false); err != nil {
			log.Fatalf("Insert(%d): %v", key, err)
		}
	}

	if v, ok := t.Lookup(7); ok {
		fmt.Printf("lookup(7) = %d\n", v)
	}

	if ok := t.Delete(7); ok {
		fmt.Println("deleted 7")
	}
	if _, ok := t.Lookup(7); !ok {
		fmt.Println("lookup(7) correctly not found after delete")
	}

	if err := t.Verify(); err != nil {
		log.Fatalf("Verify: %v", err)
	}
	fmt.Printf("table holds %d entries, verified consistent\n", t.Len())
}

func logEvent(kind dcht.EventKind, bucketIndex, slot int) {
	fmt.Printf("event: %s bucket=%d slot=%d\n", kind, bucketIndex, slot)
}
