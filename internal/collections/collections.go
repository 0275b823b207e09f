// Package collections derives per-build views over the loaded content:
// the post list, the site-wide tag set, and the per-tag index. All of it
// is recomputed from scratch on every build.
package collections

import (
	"sort"

	"github.com/stenstad/inkwell/internal/content"
	"github.com/stenstad/inkwell/internal/util/sets"
)

// reserved are collection names that must never surface as tags.
var reserved = sets.New("posts", "all")

// Tags returns the union of all item tags, excluding the reserved
// collection names, deduplicated and sorted ascending. Items without
// tags contribute nothing.
func Tags(items []*content.Item) []string {
	seen := sets.New[string]()
	for _, it := range items {
		for _, tag := range it.Meta.Tags {
			if reserved.Has(tag) {
				continue
			}
			seen.Add(tag)
		}
	}

	out := seen.Values()
	sort.Strings(out)
	return out
}

// ByTag indexes items by tag, excluding reserved names. Each bucket
// preserves the input item order.
func ByTag(items []*content.Item) map[string][]*content.Item {
	index := make(map[string][]*content.Item)
	for _, it := range items {
		for _, tag := range it.Meta.Tags {
			if reserved.Has(tag) {
				continue
			}
			index[tag] = append(index[tag], it)
		}
	}
	return index
}

// Posts filters the items down to posts, preserving order (the loader
// already sorts posts newest first).
func Posts(items []*content.Item) []*content.Item {
	var posts []*content.Item
	for _, it := range items {
		if it.Kind == content.KindPost {
			posts = append(posts, it)
		}
	}
	return posts
}

// Pages filters the items down to standalone pages.
func Pages(items []*content.Item) []*content.Item {
	var pages []*content.Item
	for _, it := range items {
		if it.Kind == content.KindPage {
			pages = append(pages, it)
		}
	}
	return pages
}
