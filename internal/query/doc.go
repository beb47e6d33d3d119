// Package query is a keyed, stale-while-revalidate cache for remote reads.
//
// Every Key owns exactly one State. Subscribing to a Query creates the state
// lazily, serves cached data while it is fresh, and starts a background fetch
// once it is stale without clearing the data already shown. Concurrent
// requests for the same key attach to the single in-flight fetch. Failed
// fetches are retried with exponential backoff; a terminal failure marks the
// state as errored only when there is no earlier data to fall back on.
//
// Each fetch is tagged with a generation number. Results whose generation is
// no longer current are dropped, which is how cancellation works: when the
// last observer leaves during a fetch the fetch context is cancelled, the
// loading state the fetch introduced is undone, and the late response is
// ignored. Data seeded with SetData and Invalidate marks committed while the
// fetch ran are kept. Unobserved states are evicted after GCTime.
//
// Transitions are delivered to listeners and Watch channels in Version order.
package query
