package common

import (
	"fmt"
	"strings"
)

// RuleConfig 验证规则配置
type RuleConfig struct {
	Name       string              `yaml:"name"`
	Desc       string              `yaml:"desc"`       //规则描述,验证失败时作为错误消息
	Validators []map[string]string `yaml:"validators"` //验证器列表,必须要有name
}

// ValidateRuleConfig 验证规则配置
type ValidateRuleConfig struct {
	Rules  []RuleConfig `yaml:"rules"`
	SName  string       `yaml:"sname"` //服务的名称
	parsed validateRuleMap
}

// Parse 解析验证的配置
func (p *ValidateRuleConfig) Parse() error {
	if p == nil {
		Warnf("no validate conf")
		return nil
	}
	rules := make(validateRuleMap)
	for _, ruleConfig := range p.Rules {
		ruleName := strings.TrimSpace(ruleConfig.Name)
		if len(ruleName) == 0 {
			return fmt.Errorf("the rule name must not be empty")
		}
		rule, err := newValidateRule(ruleConfig)
		if err != nil {
			return fmt.Errorf("parse rule %s fail,err:%w", ruleName, err)
		}
		rules[ruleName] = rule
		Debugf("add validate rule:%s", ruleName)
	}
	p.parsed = rules
	return nil
}

// AddRuleIfAbsent 当没有配置名为rule.Name的规则时,添加该规则
func (p *ValidateRuleConfig) AddRuleIfAbsent(rule RuleConfig) error {
	if p.parsed == nil {
		p.parsed = make(validateRuleMap)
	}
	if _, ok := p.parsed[rule.Name]; ok {
		return nil
	}
	parsed, err := newValidateRule(rule)
	if err != nil {
		return err
	}
	p.parsed[rule.Name] = parsed
	return nil
}

func newValidateRule(ruleConfig RuleConfig) (*ValidateRule, error) {
	validators := make([]StrValidator, 0, len(ruleConfig.Validators))
	for _, validatorConf := range ruleConfig.Validators {
		v, err := NewValidatorByConf(validatorConf)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}
	return &ValidateRule{desc: ruleConfig.Desc, validators: validators}, nil
}

// ValidateRule 定义验证规则
type ValidateRule struct {
	desc       string
	validators []StrValidator
}

type validateRuleMap map[string]*ValidateRule

// ValidateConfigurer validateConfig
type ValidateConfigurer interface {
	GetValidateRuleConfig() *ValidateRuleConfig
}

// ValidateService 验证服务
type ValidateService interface {
	Service
	//Validate 使用name指定验证规则,对value进行验证,验证通过返回nil,否则返回错误原因
	Validate(name string, value string) error
}

// RuleValidateService 根据规则进行的验证服务
type RuleValidateService struct {
	BaseService
	rules validateRuleMap
}

// NewRuleValidateService create RuleValidateService from a parsed config
func NewRuleValidateService(config *ValidateRuleConfig) (*RuleValidateService, error) {
	if config == nil || config.parsed == nil {
		return nil, fmt.Errorf("no parsed validate config")
	}
	return &RuleValidateService{
		BaseService: BaseService{SName: config.SName},
		rules:       config.parsed,
	}, nil
}

// Validate 验证
func (p *RuleValidateService) Validate(ruleName string, s string) error {
	rule := p.rules[ruleName]
	if rule == nil {
		return fmt.Errorf("can't find validate rule %s", ruleName)
	}

	for _, v := range rule.validators {
		if !v.Validate(s) {
			return NewValidateError(rule.desc)
		}
	}
	return nil
}

// ValidatePair 定义验证规则名称其需要验证的值
type ValidatePair struct {
	Name  string
	Value string
	Msg   string
}

// NewValidatePair create ValidatePair
func NewValidatePair(name, value string) *ValidatePair {
	return &ValidatePair{Name: name, Value: value}
}

// ValidateAll 验证所有的规则
func ValidateAll(validateService ValidateService, nameAndValues ...*ValidatePair) error {
	for _, nv := range nameAndValues {
		if err := validateService.Validate(nv.Name, nv.Value); err != nil {
			if nv.Msg != "" {
				return NewValidateError(nv.Msg)
			}
			return err
		}
	}
	return nil
}

// ValidateError error
type ValidateError struct {
	msg string
}

// NewValidateError new
func NewValidateError(msg string) *ValidateError {
	return &ValidateError{msg: msg}
}

func (p *ValidateError) Error() string {
	if p == nil {
		return ""
	}
	return p.msg
}
