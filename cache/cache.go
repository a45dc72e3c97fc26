// Package cache 提供Redis连接池,缓存key参数以及msgpack编解码
package cache

// Param is the cache param
type Param interface {
	//Group cache group id
	Group() string
	//Key cache key
	Key() string
	//Expire second time,0 means no expire
	Expire() int
}

// ParamConf is the cache param conf with cache group,key prefix and expire
type ParamConf struct {
	group     string
	keyPrefix string
	expire    int
}

// NewParamConf create ParamConf
func NewParamConf(group, keyPrefix string, expire int) *ParamConf {
	return &ParamConf{
		group:     group,
		keyPrefix: keyPrefix,
		expire:    expire,
	}
}

// Group return cache group
func (p *ParamConf) Group() string {
	return p.group
}

// Expire return expire second
func (p *ParamConf) Expire() int {
	return p.expire
}

// KeyPrefix return key prefix
func (p *ParamConf) KeyPrefix() string {
	return p.keyPrefix
}

// NewWithKeyPrefix append keyPrefix to exist ParamConf,return new ParamConf
func (p *ParamConf) NewWithKeyPrefix(keyPrefix string) *ParamConf {
	var param = *p
	param.keyPrefix = p.keyPrefix + keyPrefix
	return &param
}

// NewParamKey create new ParamKey with key
func (p *ParamConf) NewParamKey(key string) *ParamKey {
	return &ParamKey{
		ParamConf: p,
		key:       p.keyPrefix + key,
	}
}

// ParamKey is the cache param with key
type ParamKey struct {
	*ParamConf
	key string
}

// Key implements Param.Key()
func (p *ParamKey) Key() string {
	return p.key
}
