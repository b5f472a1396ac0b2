// Package feed is the pagination and mutation engine behind every post
// list: it builds page queries, fetches pages, merges them into a
// de-duplicated in-memory feed, serializes "load more" requests and applies
// like and bookmark toggles optimistically before reconciling with the
// store.
//
// A View ties the pieces together for one scope:
//
//	v := feed.NewView(store, feed.Options{Scope: feed.ByAuthor(""), ViewerID: uid, PageSize: 5})
//	go v.Run(ctx)
//	res := v.LoadMore(ctx)
//	for _, p := range v.Items() { ... }
package feed
