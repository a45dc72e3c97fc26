package common

import (
	"hash/fnv"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"sync"
	"syscall"
)

// HasNil 检查参数中是否有nil值,包括值为nil的指针和接口
func HasNil(params ...interface{}) bool {
	for _, p := range params {
		if p == nil {
			return true
		}
		v := reflect.ValueOf(p)
		switch v.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			if v.IsNil() {
				return true
			}
		}
	}
	return false
}

// IsEmpty 检查字符串参数中是否有空白字符串
func IsEmpty(params ...string) bool {
	for _, p := range params {
		if strings.TrimSpace(p) == "" {
			return true
		}
	}
	return false
}

// Fnv32Hashcode 计算s的fnv32 hash,结果非负
func Fnv32Hashcode(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() & 0x7fffffff)
}

// Shutdownhook 监听进程退出信号,执行停机函数
type Shutdownhook struct {
	ch    chan os.Signal
	hooks []func()
	sync.Mutex
}

// NewShutdownhook 创建一个Shutdownhook,sig是要监听的信号,默认会监听syscall.SIGINT,syscall.SIGTERM
func NewShutdownhook(sig ...os.Signal) *Shutdownhook {
	if len(sig) == 0 {
		sig = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, len(sig))
	signal.Notify(ch, sig...)
	return &Shutdownhook{ch: ch}
}

// AddHook 增加一个Hook函数
func (p *Shutdownhook) AddHook(hookFunc func()) {
	p.Lock()
	defer p.Unlock()
	p.hooks = append(p.hooks, hookFunc)
}

// WaitShutdown 等待进程退出的信号,当收到进程退出的信号后,依次执行注册的hook函数
func (p *Shutdownhook) WaitShutdown() {
	s := <-p.ch
	signal.Stop(p.ch)

	p.Lock()
	hooks := p.hooks
	p.Unlock()

	Infof("receive signal:%v,run hooks", s)
	for _, f := range hooks {
		f()
	}
	Infof("finished run hooks")
}
