package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// StrValidator 字符串验证器
type StrValidator interface {
	//Validate 验证字符串参数是否符合规则
	Validate(param string) bool
}

// ValidatorNewer 根据配置创建验证器的函数
type ValidatorNewer func(conf map[string]string) (StrValidator, error)

// StringLenValidator 字符串长度验证,按字节计算
type StringLenValidator struct {
	min int
	max int
}

// Validate 验证字符串的长度
func (p *StringLenValidator) Validate(param string) bool {
	strLen := len(param)
	return p.min <= strLen && strLen <= p.max
}

// NotEmptyValidator 非空,且不能全部是空白字符
type NotEmptyValidator struct {
}

// Validate 验证字符串是否为空
func (p *NotEmptyValidator) Validate(param string) bool {
	return len(strings.TrimSpace(param)) > 0
}

// PrintableValidator rejects invalid utf-8 and control characters
type PrintableValidator struct {
}

// Validate implements StrValidator
func (p *PrintableValidator) Validate(param string) bool {
	if !utf8.ValidString(param) {
		return false
	}
	for _, r := range param {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Int64Validator 64位整数验证,空字符串视为通过
type Int64Validator struct {
	min int64
	max int64
}

// Validate 验证整型值
func (p *Int64Validator) Validate(param string) bool {
	if len(param) == 0 {
		return true
	}
	if v, err := strconv.ParseInt(param, 10, 64); err == nil {
		return p.min <= v && v <= p.max
	}
	return false
}

// RegExValidator 正则表达式验证
type RegExValidator struct {
	pattern *regexp.Regexp
	empty   bool //是否允许为空
}

// Validate 正则表达式验证
func (p *RegExValidator) Validate(param string) bool {
	if param == "" && p.empty {
		return true
	}
	return p.pattern.MatchString(param)
}

// NewStrLenValidator conf["min"] 最小长度,conf["max"] 最大长度
func NewStrLenValidator(conf map[string]string) (StrValidator, error) {
	minLen, err := strconv.Atoi(conf["min"])
	if err != nil {
		return nil, fmt.Errorf("invalid strlen min:%w", err)
	}
	maxLen, err := strconv.Atoi(conf["max"])
	if err != nil {
		return nil, fmt.Errorf("invalid strlen max:%w", err)
	}
	if minLen < 0 || maxLen < 0 || minLen > maxLen {
		return nil, fmt.Errorf("invalid str length,minLen:%v,maxLen:%v", minLen, maxLen)
	}
	return &StringLenValidator{min: minLen, max: maxLen}, nil
}

// NewInt64Validator conf["min"] 最小值,conf["max"] 最大值
func NewInt64Validator(conf map[string]string) (StrValidator, error) {
	min, err := strconv.ParseInt(conf["min"], 10, 64)
	if err != nil {
		return nil, err
	}
	max, err := strconv.ParseInt(conf["max"], 10, 64)
	if err != nil {
		return nil, err
	}
	if min > max {
		return nil, fmt.Errorf("invalid min %d,max %d", min, max)
	}
	return &Int64Validator{min: min, max: max}, nil
}

// NewRegexValidator conf["pattern"] 正则表达式,conf["empty"] 是否允许为空
func NewRegexValidator(conf map[string]string) (StrValidator, error) {
	pattern := conf["pattern"]
	if len(pattern) == 0 {
		return nil, fmt.Errorf("empty regex pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegExValidator{pattern: re, empty: strings.ToLower(conf["empty"]) == "true"}, nil
}

// 内置的验证器名称
const (
	VNOTEMPTY  = "notempty"
	VPRINTABLE = "printable"
	VSTRLEN    = "strlen"
	VINT64     = "i64"
	VREGEX     = "regex"
)

var (
	validatorNewers   = map[string]ValidatorNewer{}
	validatorNewersMu sync.RWMutex
)

// RegValidatorNewer 根据名称注册验证器构建函数
func RegValidatorNewer(name string, newer ValidatorNewer) error {
	validatorNewersMu.Lock()
	defer validatorNewersMu.Unlock()
	if _, ok := validatorNewers[name]; ok {
		return fmt.Errorf("duplicate validator %s", name)
	}
	validatorNewers[name] = newer
	return nil
}

// NewValidatorByConf 根据配置conf["name"]及其对应的参数构建验证器
func NewValidatorByConf(conf map[string]string) (StrValidator, error) {
	name := conf["name"]
	validatorNewersMu.RLock()
	newer := validatorNewers[name]
	validatorNewersMu.RUnlock()
	if newer == nil {
		return nil, fmt.Errorf("can't find the validator name:%s", name)
	}
	return newer(conf)
}

func init() {
	notEmpty := &NotEmptyValidator{}
	printable := &PrintableValidator{}
	_ = RegValidatorNewer(VNOTEMPTY, func(map[string]string) (StrValidator, error) { return notEmpty, nil })
	_ = RegValidatorNewer(VPRINTABLE, func(map[string]string) (StrValidator, error) { return printable, nil })
	_ = RegValidatorNewer(VSTRLEN, NewStrLenValidator)
	_ = RegValidatorNewer(VINT64, NewInt64Validator)
	_ = RegValidatorNewer(VREGEX, NewRegexValidator)
}
