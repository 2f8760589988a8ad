package db

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ArrayUnion adds Values to the array at the dotted field Path, skipping values already present.
type ArrayUnion struct {
	Path   string
	Values []string
}

// ArrayUnionMissing is returned by ArrayUnionScript when the document does not exist.
const ArrayUnionMissing = -1

// ArrayUnionScript applies a list of array unions to one JSON document atomically.
//
// KEYS[1] is the document. ARGV is: field count, then per field the JSONPath,
// the value count and the JSON-encoded values. A missing or non-object parent
// is replaced by an empty object, a missing or non-array leaf by an empty
// array. Returns the number of appended values, or -1 when the document is
// absent. A document whose root is not an object is rejected before any write.
const ArrayUnionScript = `
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
local root = redis.call('JSON.TYPE', KEYS[1], '$')
if #root == 0 or root[1] ~= 'object' then
  return redis.error_reply('ERR profile root is not an object')
end
local added = 0
local i = 2
for _ = 1, tonumber(ARGV[1]) do
  local path = ARGV[i]
  local count = tonumber(ARGV[i + 1])
  i = i + 2
  local prefix = '$'
  for seg in string.gmatch(string.sub(path, 3), '[^.]+') do
    prefix = prefix .. '.' .. seg
    if prefix ~= path then
      local t = redis.call('JSON.TYPE', KEYS[1], prefix)
      if #t == 0 or t[1] ~= 'object' then
        redis.call('JSON.SET', KEYS[1], prefix, '{}')
      end
    end
  end
  local t = redis.call('JSON.TYPE', KEYS[1], path)
  if #t == 0 or t[1] ~= 'array' then
    redis.call('JSON.SET', KEYS[1], path, '[]')
  end
  for j = 0, count - 1 do
    local v = ARGV[i + j]
    local idx = redis.call('JSON.ARRINDEX', KEYS[1], path, v)
    if #idx == 0 then
      return redis.error_reply('ERR no array at ' .. path)
    end
    if idx[1] == -1 then
      redis.call('JSON.ARRAPPEND', KEYS[1], path, v)
      added = added + 1
    end
  end
  i = i + count
end
return added
`

// ArrayUnionArgs encodes unions into ArrayUnionScript arguments.
func ArrayUnionArgs(unions []ArrayUnion) ([]string, error) {
	args := []string{strconv.Itoa(len(unions))}
	for _, u := range unions {
		path, err := jsonPath(u.Path)
		if err != nil {
			return nil, err
		}
		args = append(args, path, strconv.Itoa(len(u.Values)))
		for _, v := range u.Values {
			enc, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode value %q: %w", v, err)
			}
			args = append(args, string(enc))
		}
	}
	return args, nil
}

// jsonPath converts a dotted field path into a JSONPath rooted at $.
func jsonPath(field string) (string, error) {
	if field == "" {
		return "", fmt.Errorf("empty field path")
	}
	for _, seg := range strings.Split(field, ".") {
		if seg == "" {
			return "", fmt.Errorf("invalid field path %q", field)
		}
	}
	return "$." + field, nil
}
