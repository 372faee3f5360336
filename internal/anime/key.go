package anime

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/varoOP/malmirror/internal/domain"
)

const keySeparator = "::"

// queryKey serialises opts into a stable cache key. The fixed fields come
// first in a fixed order, then the filters sorted by name. Values are JSON
// encoded so 1998 and "1998" produce different keys.
func queryKey(opts domain.QueryOptions) string {
	parts := []string{
		entity + "_query",
		"page=" + intOrNil(opts.Page),
		"limit=" + intOrNil(opts.Limit),
		"orderBy=" + opts.OrderBy,
		"dir=" + string(opts.OrderDirection.Normalize()),
		"search=" + opts.Search,
	}

	names := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		names = append(names, k)
	}
	sort.Strings(names)

	filters := make([]string, len(names))
	for i, k := range names {
		filters[i] = k + "=" + encode(opts.Filters[k])
	}
	parts = append(parts, "filters={"+strings.Join(filters, ",")+"}")

	return strings.Join(parts, keySeparator)
}

func intOrNil(v *int) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprint(*v)
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%T:%v", v, v)
	}
	return string(b)
}
