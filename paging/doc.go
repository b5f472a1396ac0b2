// Package paging provides the composite cursor used by every feed query.
//
// A cursor records the (created_at, id) of the last delivered item; the next
// page continues strictly after it in descending order, so items sharing a
// timestamp are neither skipped nor repeated.
//
//	cur := &paging.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
//	token := cur.Encode()
//
//	cur, err := paging.DecodeCursor(token)
//	if err != nil {
//	    return paging.ErrInvalidCursor
//	}
package paging
