package counter

import (
	"github.com/gomodule/redigo/redis"
)

// Lua
const (
	LUAFALSE int64 = 0
	LUATRUE  int64 = 1
)

// KEYS[1] counter key,KEYS[2] sync set key
// ARGV[1] now millis,ARGV[2] is init,ARGV[3] init total
// return {exist, total}
const incrLua = `
if redis.call('EXISTS', KEYS[1]) == 0 then
  if ARGV[2] == '0' then
    return {0, 0}
  end
  redis.call('SET', KEYS[1], ARGV[3])
end
local total = redis.call('INCR', KEYS[1])
redis.call('ZADD', KEYS[2], ARGV[1], KEYS[1])
return {1, total}
`

// KEYS[1] sync set key
// ARGV[1] max score,ARGV[2] limit
// return {key1, total1, key2, total2...}
const popSyncLua = `
local keys = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, ARGV[2])
local result = {}
for _, k in ipairs(keys) do
  redis.call('ZREM', KEYS[1], k)
  local v = redis.call('GET', k)
  if v then
    table.insert(result, k)
    table.insert(result, v)
  end
end
return result
`

var (
	incrScript    = redis.NewScript(2, incrLua)
	popSyncScript = redis.NewScript(1, popSyncLua)
)
