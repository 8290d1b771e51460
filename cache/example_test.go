package cache_test

import (
	"context"
	"fmt"
	"time"

	"hotcache/cache"
)

func ExampleNew() {
	userIDs, err := cache.New[[]uint32](func(context.Context) ([]uint32, error) {
		return []uint32{1, 2, 3}, nil // expensive database call happens here
	}).Frequency(3 * time.Minute).Load(context.Background())
	if err != nil {
		panic(err)
	}
	defer userIDs.Close()

	fmt.Println(userIDs.Read())
	// Output: [1 2 3]
}
