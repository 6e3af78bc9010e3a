package wpapi

import (
	"context"
	"encoding/json"
	"fmt"
)

// FetchCategories walks the categories collection from page 1 until a page
// comes back empty and returns the full id to name table. Entries missing
// either field are skipped. The empty page is the only termination
// condition; the pagination header is not consulted here.
func (c *Client) FetchCategories(ctx context.Context) (map[int64]string, error) {
	table := make(map[int64]string)

	for page := 1; ; page++ {
		body, _, err := c.get(ctx, c.categoriesURL, page)
		if err != nil {
			return nil, fmt.Errorf("fetch categories page %d: %w", page, err)
		}

		var cats []Category
		if err := json.Unmarshal(body, &cats); err != nil {
			return nil, fmt.Errorf("decode categories page %d: %w", page, err)
		}

		if len(cats) == 0 {
			return table, nil
		}

		for _, cat := range cats {
			if cat.ID == nil || cat.Name == nil {
				continue
			}
			table[*cat.ID] = *cat.Name
		}
	}
}
