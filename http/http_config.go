// Package http 提供基本的http服务
package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	c "github.com/d0ngw/viewcount/common"
)

// Config Http配置
type Config struct {
	Addr          string `yaml:"addr"`          //Http监听地址
	ReadTimeout   int    `yaml:"read_timeout"`  //读超时,单位秒
	WriteTimeout  int    `yaml:"write_timeout"` //写超时,单位秒
	MaxConns      int    `yaml:"max_conns"`     //最大的并发连接数
	AccessLog     bool   `yaml:"access_log"`    //是否记录访问日志
	middlewares   []Middleware
	controllers   []Controller
	handles       map[string]*handlerWithMiddleware
	controllerMux sync.RWMutex
}

type handlerWithMiddleware struct {
	handlerFunc http.HandlerFunc
	middlewares []Middleware
}

// NewConfig 创建配置
func NewConfig(addr string) *Config {
	conf := &Config{Addr: addr}
	conf.init()
	return conf
}

func (p *Config) init() {
	if p.handles == nil {
		p.handles = map[string]*handlerWithMiddleware{}
	}
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p == nil {
		return nil
	}
	if p.Addr == "" {
		p.Addr = ":8080"
	}
	if p.ReadTimeout < 0 || p.WriteTimeout < 0 {
		return fmt.Errorf("invalid http timeout")
	}
	p.init()
	return nil
}

func (p *Config) readTimeout() time.Duration {
	return time.Duration(p.ReadTimeout) * time.Second
}

func (p *Config) writeTimeout() time.Duration {
	return time.Duration(p.WriteTimeout) * time.Second
}

// RegController 注册controller中的所有处理函数
func (p *Config) RegController(controller Controller) error {
	if controller == nil {
		return fmt.Errorf("can't reg nil controller")
	}

	p.controllerMux.Lock()
	defer p.controllerMux.Unlock()

	handlers, err := controller.GetHandlers()
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		c.Warnf("can't find handler in %T", controller)
		return nil
	}

	p.controllers = append(p.controllers, controller)
	path := controller.GetPath()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	for pattern, h := range handlers {
		patternPath := joinPattern(path, pattern)
		if err := p.regHandleFunc(patternPath, &handlerWithMiddleware{handlerFunc: h}); err != nil {
			return err
		}
		c.Infof("register controller %T#%s,pattern:%s", controller, controller.GetName(), patternPath)
	}
	return nil
}

// joinPattern 将控制器的路径前缀插入到pattern中,pattern可以带有方法,例如"POST /views/{id}"
func joinPattern(path, pattern string) string {
	method, rest, ok := strings.Cut(pattern, " ")
	if !ok {
		method, rest = "", pattern
	}
	patternPath := path + strings.TrimPrefix(strings.TrimSpace(rest), "/")
	if method != "" {
		return method + " " + patternPath
	}
	return patternPath
}

func (p *Config) regHandleFunc(patternPath string, handle *handlerWithMiddleware) error {
	p.init()
	if _, ok := p.handles[patternPath]; ok {
		return fmt.Errorf("duplicate pattern:%s", patternPath)
	}
	p.handles[patternPath] = handle
	return nil
}

// RegHandleFunc 注册patternPath的处理函数handlerFunc,middlewares只作用于该处理函数
func (p *Config) RegHandleFunc(patternPath string, handlerFunc http.HandlerFunc, middlewares ...Middleware) error {
	if handlerFunc == nil {
		return fmt.Errorf("can't bind nil handlerFunc to %s", patternPath)
	}
	return p.regHandleFunc(patternPath, &handlerWithMiddleware{handlerFunc: handlerFunc, middlewares: middlewares})
}

// RegMiddleware 注册全局的middleware,需要在Service.Init之前完成
func (p *Config) RegMiddleware(middleware Middleware) error {
	if middleware == nil {
		return fmt.Errorf("invalid middleware")
	}
	p.middlewares = append(p.middlewares, middleware)
	return nil
}
