// Package cache keeps a single value hot in memory and refreshes it in the
// background.
//
// A Producer computes the value. Load invokes it once, waits for the result
// and then starts a goroutine that invokes it again every Frequency,
// measured from the end of the previous invocation. Readers get the latest
// successfully produced value through a Handle without ever blocking on a
// refresh. A failed refresh keeps the previous value.
//
//	users, err := cache.New(func(ctx context.Context) ([]uint32, error) {
//		return db.ActiveUserIDs(ctx)
//	}).Frequency(3 * time.Minute).Load(ctx)
//	if err != nil {
//		return err
//	}
//	defer users.Close()
//
//	ids := users.Read()
//
// Handles are cheap to Clone. The refresh stops once every Handle has been
// closed or collected.
package cache
