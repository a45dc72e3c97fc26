// Package views 提供文章浏览计数服务
package views

import (
	"context"
	"errors"
	"strconv"

	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/counter"
)

// PostIDRule 文章标识的验证规则名称
const PostIDRule = "post_id"

// DefaultPostIDRule 没有配置post_id规则时使用
var DefaultPostIDRule = c.RuleConfig{
	Name: PostIDRule,
	Desc: "invalid post id",
	Validators: []map[string]string{
		{"name": c.VNOTEMPTY},
		{"name": c.VPRINTABLE},
		{"name": c.VSTRLEN, "min": "1", "max": strconv.Itoa(counter.MaxIDLen)},
	},
}

// NewValidateService create the validate service from conf,the default post_id rule is added when absent.
// conf may be nil.
func NewValidateService(conf *c.ValidateRuleConfig) (*c.RuleValidateService, error) {
	if conf == nil {
		conf = &c.ValidateRuleConfig{}
	}
	if err := conf.AddRuleIfAbsent(DefaultPostIDRule); err != nil {
		return nil, err
	}
	return c.NewRuleValidateService(conf)
}

// Service 浏览计数服务,只通过counter.Store访问计数
type Service struct {
	store     counter.Store
	validator c.ValidateService
}

// NewService create Service,validator must provide the post_id rule
func NewService(store counter.Store, validator c.ValidateService) (*Service, error) {
	if c.HasNil(store, validator) {
		return nil, errors.New("store and validator must be set")
	}
	return &Service{store: store, validator: validator}, nil
}

func (p *Service) validate(id string) error {
	if err := p.validator.Validate(PostIDRule, id); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

// Increment 增加一次浏览,返回新的总数,首次浏览返回1
func (p *Service) Increment(ctx context.Context, id string) (int64, error) {
	if err := p.validate(id); err != nil {
		return 0, err
	}
	total, err := p.store.Incr(ctx, id)
	if err != nil {
		if errors.Is(err, counter.ErrEmptyID) {
			return 0, badRequest(err.Error())
		}
		c.Warnf("incr %q fail,err:%v", id, err)
		return 0, storeUnavailable(err)
	}
	return total, nil
}

// Read 读取浏览总数,从未浏览过的返回无效的Total,不会创建计数
func (p *Service) Read(ctx context.Context, id string) (Total, error) {
	if err := p.validate(id); err != nil {
		return Total{}, err
	}
	total, exist, err := p.store.Get(ctx, id)
	if err != nil {
		c.Warnf("get %q fail,err:%v", id, err)
		return Total{}, storeUnavailable(err)
	}
	if !exist {
		return Total{}, nil
	}
	return NewTotal(total), nil
}
