package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/d0ngw/viewcount/cache"
	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/counter"
	vhttp "github.com/d0ngw/viewcount/http"
	"github.com/d0ngw/viewcount/orm"
	"github.com/d0ngw/viewcount/views"
)

// app 组装服务端的各个组件
type app struct {
	conf        *Config
	redisClient *cache.RedisClient
	dbPool      *orm.DBPool
	httpSvc     *vhttp.Service
	services    *c.Services
}

func newApp(ctx context.Context, conf *Config, createTable bool) (_ *app, err error) {
	a := &app{conf: conf}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	if conf.Counter.NeedRedis() {
		if conf.Redis == nil {
			return nil, errors.New("no redis config")
		}
		if a.redisClient, err = cache.NewRedisClient(conf.Redis); err != nil {
			return nil, err
		}
		if err = a.redisClient.Ping(ctx); err != nil {
			return nil, err
		}
	}
	if conf.Counter.NeedDB() {
		if a.dbPool, err = conf.DB.NewDBPool(); err != nil {
			return nil, err
		}
		if err = a.dbPool.DB.PingContext(ctx); err != nil {
			return nil, orm.NewDBError(err, "ping db fail")
		}
		if createTable {
			dbStore, err := counter.NewDBStore(a.dbPool, conf.Counter.Table, 0)
			if err != nil {
				return nil, err
			}
			if err = dbStore.CreateTable(ctx); err != nil {
				return nil, fmt.Errorf("create table fail,err:%w", err)
			}
		}
	}

	store, storeServices, err := counter.NewStore(conf.Counter, a.redisClient, a.dbPool, conf.txRetries())
	if err != nil {
		return nil, err
	}
	validator, err := views.NewValidateService(conf.GetValidateRuleConfig())
	if err != nil {
		return nil, err
	}
	viewSvc, err := views.NewService(store, validator)
	if err != nil {
		return nil, err
	}

	httpConf := conf.HTTP
	if err = httpConf.RegMiddleware(&vhttp.RecoverMiddleware{}); err != nil {
		return nil, err
	}
	if httpConf.AccessLog {
		if err = httpConf.RegMiddleware(&vhttp.AccessLogMiddleware{}); err != nil {
			return nil, err
		}
	}
	if err = httpConf.RegController(vhttp.NewViewController(viewSvc)); err != nil {
		return nil, err
	}
	a.httpSvc = vhttp.NewService("http", httpConf)
	//http服务最后启动,最先停止,停止后同步剩余的计数
	a.httpSvc.Order = 100

	services := []c.Service{validator, a.httpSvc}
	services = append(services, storeServices...)
	a.services = c.NewServices(services...)
	c.Infof("counter store:%s,services:%d", conf.Counter.Store, len(services))
	return a, nil
}

func (p *app) start() error {
	if !p.services.Init() {
		return errors.New("init services fail")
	}
	if !p.services.Start() {
		p.services.Stop()
		return errors.New("start services fail")
	}
	return nil
}

func (p *app) stop() {
	p.services.Stop()
	p.close()
}

func (p *app) close() {
	if p.redisClient != nil {
		if err := p.redisClient.Close(); err != nil {
			c.Warnf("close redis fail,err:%v", err)
		}
	}
	if p.dbPool != nil {
		if err := p.dbPool.Close(); err != nil {
			c.Warnf("close db fail,err:%v", err)
		}
	}
}
