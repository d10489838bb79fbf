package searchpaths

import "strings"

// isFilter reports whether a filter value should narrow the search.
// "All" is what the catalog UI sends for no selection.
func isFilter(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "all")
}

func buildQuery(input *Input) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if search := strings.TrimSpace(input.Search); search != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  search,
				"fields": []string{"title^2", "description"},
				"type":   "best_fields",
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if isFilter(input.Category) {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": strings.TrimSpace(input.Category)},
		})
	}
	if isFilter(input.Level) {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"difficulty_level": strings.TrimSpace(input.Level)},
		})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{
				"title.keyword": map[string]interface{}{"order": "asc", "unmapped_type": "keyword"},
			},
		},
		"track_total_hits": true,
	}
}
