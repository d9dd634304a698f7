package paging

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Placeholder is the token in a URL template that is replaced by the page index
const Placeholder = "{page}"

// MaxPages is the largest number of pages a single run may cover
const MaxPages = 10000

// PageURL substitutes page into the template and checks that the result is an absolute URL
func PageURL(template string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("invalid page index %d", page)
	}
	if !strings.Contains(template, Placeholder) {
		return "", fmt.Errorf("url template %q has no %s placeholder", template, Placeholder)
	}

	urlStr := strings.ReplaceAll(template, Placeholder, strconv.Itoa(page))

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", urlStr)
	}

	return urlStr, nil
}

// Batches splits the inclusive range [start, end] into consecutive groups of
// at most size page indices. The range may span at most MaxPages pages.
func Batches(start, end, size int) ([][]int, error) {
	if size < 1 {
		return nil, fmt.Errorf("batch size must be >= 1, got %d", size)
	}
	if start > end {
		return nil, fmt.Errorf("start page %d is after end page %d", start, end)
	}
	if end-start >= MaxPages {
		return nil, fmt.Errorf("page range %d..%d exceeds %d pages", start, end, MaxPages)
	}

	batches := make([][]int, 0, CountBatches(start, end, size))
	first := start
	for {
		// end-first cannot overflow; first+size-1 can near math.MaxInt
		last := end
		if end-first >= size {
			last = first + size - 1
		}

		batch := make([]int, 0, last-first+1)
		for i := 0; i <= last-first; i++ {
			batch = append(batch, first+i)
		}
		batches = append(batches, batch)

		if last == end {
			break
		}
		first = last + 1
	}

	return batches, nil
}

// CountBatches returns how many batches of size cover [start, end]
func CountBatches(start, end, size int) int {
	if size <= 0 || end < start {
		return 0
	}
	n := end - start + 1
	count := n / size
	if n%size != 0 {
		count++
	}
	return count
}
