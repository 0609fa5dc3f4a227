// Package testing provides test doubles for code built on the visibility
// watcher: a fake platform whose observers record registrations and deliver
// batches on demand. Pair it with clock.Manual to control time.
//
//	platform := testing.NewFakePlatform()
//	// ... create a manager on platform ...
//	platform.Last().Emit(testing.Entry(a, true))
package testing
