package listing

// TotalPages returns max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, total].
func ClampPage(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// PageBounds returns the slice bounds of page within count items.
func PageBounds(page, pageSize, count int) (start, end int) {
	if pageSize <= 0 {
		return 0, count
	}
	start = (page - 1) * pageSize
	if start > count {
		start = count
	}
	end = start + pageSize
	if end > count {
		end = count
	}
	return start, end
}

// PageItem is one entry of a compact pager; Gap marks an ellipsis.
type PageItem struct {
	Number int
	Gap    bool
}

// PageList renders the pager shown under a list: every page when there are
// at most seven, otherwise the first and last pages around the current one
// with gaps in between.
func PageList(cur, total int) []PageItem {
	if total < 1 {
		total = 1
	}
	cur = ClampPage(cur, total)

	nums := func(ns ...int) []PageItem {
		items := make([]PageItem, 0, len(ns))
		for _, n := range ns {
			if n == 0 {
				items = append(items, PageItem{Gap: true})
				continue
			}
			items = append(items, PageItem{Number: n})
		}
		return items
	}

	switch {
	case total <= 7:
		items := make([]PageItem, 0, total)
		for i := 1; i <= total; i++ {
			items = append(items, PageItem{Number: i})
		}
		return items
	case cur <= 4:
		return nums(1, 2, 3, 4, 0, total-1, total)
	case cur >= total-3:
		return nums(1, 2, 0, total-3, total-2, total-1, total)
	default:
		return nums(1, 0, cur-1, cur, cur+1, 0, total)
	}
}
