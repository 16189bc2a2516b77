package vectorstore

import (
	"time"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// sanitizeMetadata converts values that vector payloads cannot hold natively:
// times become RFC 3339 strings and unsigned or narrow integers become int64.
func sanitizeMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		switch x := v.(type) {
		case time.Time:
			out[k] = x.UTC().Format(time.RFC3339Nano)
		case *time.Time:
			if x == nil {
				out[k] = nil
			} else {
				out[k] = x.UTC().Format(time.RFC3339Nano)
			}
		case int32:
			out[k] = int64(x)
		case uint:
			out[k] = int64(x)
		case uint32:
			out[k] = int64(x)
		case uint64:
			out[k] = int64(x)
		case float32:
			out[k] = float64(x)
		default:
			out[k] = v
		}
	}
	return out
}

func toSearchResult(r vectordb.SearchResult) SearchResult {
	text, _ := r.Payload["text"].(string)
	meta, _ := r.Payload[vectordb.MetadataKey].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	return SearchResult{ID: r.ID, Text: text, Score: r.Score, Metadata: meta}
}
