// Package history persists the recent-search list as a single JSON array.
package history

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// decode parses a stored history. Malformed data is logged and discarded so a
// corrupt entry never blocks startup.
func decode(raw []byte, source string, logger *zap.Logger) []string {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("discarding malformed search history",
			zap.String("source", source),
			zap.Error(err))
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func encode(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}
