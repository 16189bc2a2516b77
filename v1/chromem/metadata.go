package chromem

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Aleph-Alpha/ragcore/v1/vectordb"
)

// chromem stores metadata as map[string]string. Each payload value is written under
// its key with a type marker next to it so that payloads read back with their
// original scalar types.
const (
	typePrefix = "_t."
	topPrefix  = "_p."

	typeString = "s"
	typeInt    = "i"
	typeFloat  = "f"
	typeBool   = "b"
	typeJSON   = "j"
	typeNull   = "n"
)

// flattenPayload converts a ragcore payload into chromem content and metadata.
// The "text" key becomes the document content and keys of the "metadata" object are
// stored unprefixed so chromem's where filter can address them directly.
func flattenPayload(payload map[string]any) (string, map[string]string) {
	out := make(map[string]string, 2*len(payload))
	content, _ := payload["text"].(string)

	for k, v := range payload {
		switch k {
		case "text":
			if _, ok := v.(string); ok {
				continue
			}
			putValue(out, topPrefix+k, v)
		case vectordb.MetadataKey:
			meta, ok := v.(map[string]any)
			if !ok {
				putValue(out, topPrefix+k, v)
				continue
			}
			for mk, mv := range meta {
				putValue(out, mk, mv)
			}
		default:
			putValue(out, topPrefix+k, v)
		}
	}
	return content, out
}

func putValue(out map[string]string, key string, v any) {
	switch x := v.(type) {
	case nil:
		out[key], out[typePrefix+key] = "", typeNull
	case string:
		out[key], out[typePrefix+key] = x, typeString
	case bool:
		out[key], out[typePrefix+key] = strconv.FormatBool(x), typeBool
	case int, int32, int64:
		out[key], out[typePrefix+key] = vectordb.Stringify(x), typeInt
	case float32, float64:
		out[key], out[typePrefix+key] = vectordb.Stringify(x), typeFloat
	default:
		b, err := json.Marshal(x)
		if err != nil {
			out[key], out[typePrefix+key] = vectordb.Stringify(x), typeString
			return
		}
		out[key], out[typePrefix+key] = string(b), typeJSON
	}
}

// unflattenPayload is the inverse of flattenPayload.
func unflattenPayload(content string, flat map[string]string) map[string]any {
	meta := make(map[string]any)
	payload := map[string]any{"text": content, vectordb.MetadataKey: meta}

	for k, raw := range flat {
		if strings.HasPrefix(k, typePrefix) {
			continue
		}
		v := readValue(raw, flat[typePrefix+k])
		if top, ok := strings.CutPrefix(k, topPrefix); ok {
			payload[top] = v
			continue
		}
		meta[k] = v
	}
	return payload
}

func readValue(raw, typ string) any {
	switch typ {
	case typeNull:
		return nil
	case typeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case typeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case typeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case typeJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v
		}
	}
	return raw
}

// splitFilter extracts Must equality conditions on metadata keys into a chromem
// where map. rest reports whether any other condition needs in-memory evaluation.
func splitFilter(fs *vectordb.FilterSet) (where map[string]string, rest bool) {
	if fs == nil {
		return nil, false
	}
	if fs.Should != nil && len(fs.Should.Conditions) > 0 {
		rest = true
	}
	if fs.MustNot != nil && len(fs.MustNot.Conditions) > 0 {
		rest = true
	}
	if fs.Must == nil {
		return nil, rest
	}

	for _, c := range fs.Must.Conditions {
		m, ok := c.(*vectordb.MatchCondition)
		if !ok || m.FieldType != vectordb.MetadataField {
			rest = true
			continue
		}
		switch m.Value.(type) {
		case string, bool, int, int64:
			if where == nil {
				where = make(map[string]string)
			}
			where[m.Field] = vectordb.Stringify(m.Value)
		default:
			rest = true
		}
	}
	return where, rest
}
