package memory

import (
	"slices"
	"strings"

	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/structs"
)

func postField(p *structs.Post, field string) any {
	switch field {
	case "_id", "id":
		return p.ID
	case "uid":
		return p.UID
	case "name":
		return p.Name
	case "content":
		return p.Content
	case "imageUrl":
		return p.ImageURL
	case structs.FieldLikedBy:
		return p.LikedBy
	case structs.FieldBookmarks:
		return p.Bookmarks
	}
	return nil
}

func matchPost(p *structs.Post, filters []data.Filter) bool {
	for _, f := range filters {
		if !matchFilter(postField(p, f.Field), f) {
			return false
		}
	}
	return true
}

func matchFilter(v any, f data.Filter) bool {
	switch f.Op {
	case data.OpEq:
		s, ok := v.(string)
		want, _ := f.Value.(string)
		return ok && s == want
	case data.OpIn:
		s, ok := v.(string)
		set, _ := f.Value.([]string)
		return ok && slices.Contains(set, s)
	case data.OpArrayContains:
		arr, ok := v.([]string)
		want, _ := f.Value.(string)
		return ok && slices.Contains(arr, want)
	case data.OpContains:
		s, ok := v.(string)
		want, _ := f.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(want))
	}
	return false
}
