// Package site binds the CMS resource catalogue to the query cache. It owns
// the hierarchical cache keys, the typed accessors used by the view API and
// the keep-alive subscriptions that stand in for a mounted page.
package site
