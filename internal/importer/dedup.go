package importer

import (
	"strings"

	"github.com/bunca/bakery-service/internal/types"
)

const keySeparator = "\x1f"

// Finalize drops blank records and collapses duplicates on the composite key.
// The first occurrence is kept and input order preserved. A record missing any
// key field cannot be keyed safely and is always kept. dropped counts the
// duplicates removed.
func Finalize(records []types.Record, keyFields []string) (kept []types.Record, dropped int) {
	kept = make([]types.Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}

		key, ok := compositeKey(rec, keyFields)
		if !ok {
			kept = append(kept, rec)
			continue
		}
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, dropped
}

func compositeKey(rec types.Record, keyFields []string) (string, bool) {
	if len(keyFields) == 0 {
		return "", false
	}
	parts := make([]string, len(keyFields))
	for i, f := range keyFields {
		v := Normalize(rec[f])
		if v == "" {
			return "", false
		}
		parts[i] = v
	}
	return strings.Join(parts, keySeparator), true
}

func isBlankRecord(rec types.Record) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
