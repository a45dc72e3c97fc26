package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type orderService struct {
	BaseService
	trace   *[]string
	initErr error
}

func (p *orderService) Init() error {
	return p.initErr
}

func (p *orderService) Start() bool {
	*p.trace = append(*p.trace, "start "+p.SName)
	return true
}

func (p *orderService) Stop() bool {
	*p.trace = append(*p.trace, "stop "+p.SName)
	return true
}

func TestServices(t *testing.T) {
	var trace []string
	as := &orderService{BaseService: BaseService{SName: "a", Order: 2}, trace: &trace}
	bs := &orderService{BaseService: BaseService{SName: "b", Order: 1}, trace: &trace}
	s := NewServices(as, bs)
	assert.True(t, s.Init())
	assert.Equal(t, INITED, as.State())
	assert.True(t, s.Start())
	assert.Equal(t, RUNNING, bs.State())
	assert.True(t, s.Stop())
	assert.Equal(t, TERMINATED, as.State())
	assert.Equal(t, []string{"start b", "start a", "stop a", "stop b"}, trace)
}

func TestServiceInitFail(t *testing.T) {
	var trace []string
	bad := &orderService{BaseService: BaseService{SName: "bad"}, trace: &trace, initErr: errors.New("no redis")}
	s := NewServices(bad)
	assert.False(t, s.Init())
	assert.Equal(t, FAILED, bad.State())
	assert.True(t, s.Stop())
	assert.Empty(t, trace)
}

func TestServiceState(t *testing.T) {
	assert.True(t, IsValidServiceState(NEW, INITED))
	assert.False(t, IsValidServiceState(TERMINATED, RUNNING))
	assert.Equal(t, "RUNNING", RUNNING.String())
}
