package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	c "github.com/d0ngw/viewcount/common"
	"golang.org/x/net/netutil"
)

type tcpKeepAliveListener struct {
	*net.TCPListener
}

// Accept接受连接
func (ln tcpKeepAliveListener) Accept() (c net.Conn, err error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err = tc.SetKeepAlive(true); err != nil {
		return
	}
	if err = tc.SetKeepAlivePeriod(3 * time.Minute); err != nil {
		return
	}
	return tc, nil
}

// GraceableHandler 安全地关闭的处理器
type GraceableHandler struct {
	handler   http.Handler
	waitGroup *sync.WaitGroup
}

func (p *GraceableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.waitGroup.Add(1)
	defer p.waitGroup.Done()

	p.handler.ServeHTTP(w, r)
}

// Service Http服务
type Service struct {
	c.BaseService
	Conf         *Config
	listener     net.Listener
	serveMux     *http.ServeMux
	graceHandler *GraceableHandler
	server       *http.Server
	lock         sync.Mutex
}

// NewService create http service
func NewService(name string, conf *Config) *Service {
	return &Service{BaseService: c.BaseService{SName: name}, Conf: conf}
}

// Init 初始化Http服务
func (p *Service) Init() (err error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.Conf == nil {
		return errors.New("no http config")
	}
	if err = p.Conf.Parse(); err != nil {
		return err
	}

	serveMux := http.NewServeMux()
	for pattern, handler := range p.Conf.handles {
		if err = registerPattern(serveMux, pattern, p.handleWithMiddleware(handler)); err != nil {
			return err
		}
	}

	graceHandler := &GraceableHandler{
		handler:   serveMux,
		waitGroup: &sync.WaitGroup{}}

	server := &http.Server{
		Addr:         p.Conf.Addr,
		ReadTimeout:  p.Conf.readTimeout(),
		WriteTimeout: p.Conf.writeTimeout(),
		Handler:      graceHandler}

	p.graceHandler = graceHandler
	p.server = server
	p.serveMux = serveMux
	return nil
}

// registerPattern ServeMux在pattern冲突时会panic,这里转为错误
func registerPattern(mux *http.ServeMux, pattern string, handler http.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("register %s fail,err:%v", pattern, r)
		}
	}()
	mux.Handle(pattern, handler)
	return nil
}

// handleWithMiddleware 依次调用各个middleware,全局的middleware在外层
func (p *Service) handleWithMiddleware(handler *handlerWithMiddleware) http.HandlerFunc {
	var middlewares = append(append([]Middleware{}, p.Conf.middlewares...), handler.middlewares...)

	h := handler.handlerFunc
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i].Handle(h)
	}
	return h
}

// Handler returns the root handler,it's available after Init
func (p *Service) Handler() http.Handler {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.graceHandler
}

// Addr returns the listening address,it's available after Start
func (p *Service) Addr() net.Addr {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.listener == nil {
		return nil
	}
	return p.listener.Addr()
}

// Start 启动Http服务,开始端口监听和服务处理
func (p *Service) Start() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	c.Infof("Listen at %s", p.Conf.Addr)
	ln, err := net.Listen("tcp", p.Conf.Addr)
	if err != nil {
		c.Errorf("Listen at %s fail,error:%v", p.Conf.Addr, err)
		return false
	}

	tcpListener := tcpKeepAliveListener{ln.(*net.TCPListener)}
	if p.Conf.MaxConns > 0 {
		p.listener = netutil.LimitListener(tcpListener, p.Conf.MaxConns)
	} else {
		p.listener = tcpListener
	}

	p.graceHandler.waitGroup.Add(1)

	server, listener := p.server, p.listener
	go func() {
		defer p.graceHandler.waitGroup.Done()
		err := server.Serve(listener)
		if err != nil {
			var errLevel = c.Error
			if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
				errLevel = c.Warn
			}
			c.Logf(errLevel, "server.Serve return with %v", err)
		}
	}()
	return true
}

// Stop 停止Http服务,关闭端口监听,等待处理中的请求完成
func (p *Service) Stop() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.server != nil {
		p.server.SetKeepAlivesEnabled(false)
	}
	if p.listener != nil {
		if err := p.listener.Close(); err != nil {
			c.Errorf("Close listener error:%v", err)
		}
	}

	//等待所有的服务
	c.Infof("Waiting shutdown")
	if p.graceHandler != nil {
		p.graceHandler.waitGroup.Wait()
	}
	c.Infof("Finish shutdown")

	p.listener = nil
	p.graceHandler = nil
	p.server = nil
	p.serveMux = nil
	return true
}
