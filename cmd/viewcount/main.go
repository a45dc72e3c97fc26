// viewcount 文章浏览计数的服务及客户端命令
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/d0ngw/viewcount/client"
	c "github.com/d0ngw/viewcount/common"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI(os.Stdout, os.Stdin).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI(out io.Writer, in io.Reader) *cli.App {
	return &cli.App{
		Name:   "viewcount",
		Usage:  "count and display post views",
		Writer: out,
		Reader: in,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "conf-dir",
				Aliases: []string{"d"},
				Usage:   "config directory",
				Value:   "conf",
				EnvVars: []string{"VIEWCOUNT_CONF_DIR"},
			},
			&cli.StringSliceFlag{
				Name:    "conf",
				Aliases: []string{"c"},
				Usage:   "config files under conf-dir,loaded in order",
				Value:   cli.NewStringSlice("viewcount.yaml"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			incrCommand(),
			getCommand(),
			watchCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the view count http service",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "create-table",
				Usage: "create the counter table when the store uses mysql",
			},
		},
		Action: func(cctx *cli.Context) error {
			conf, err := loadConfig(cctx.String("conf-dir"), cctx.StringSlice("conf")...)
			if err != nil {
				return cli.Exit(fmt.Errorf("load config fail: %w", err), 1)
			}
			defer c.SyncLog()

			a, err := newApp(cctx.Context, conf, cctx.Bool("create-table"))
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err = a.start(); err != nil {
				a.close()
				return cli.Exit(err, 1)
			}
			c.Infof("viewcount started at %s", conf.HTTP.Addr)

			hook := c.NewShutdownhook()
			hook.AddHook(a.stop)
			hook.WaitShutdown()
			return nil
		},
	}
}

var clientFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "base-url",
		Aliases: []string{"u"},
		Usage:   "base url of the service,overrides client.base_url",
		EnvVars: []string{"VIEWCOUNT_URL"},
	},
}

// clientConfig 客户端命令的配置文件是可选的
func clientConfig(cctx *cli.Context) (*client.Config, error) {
	conf, err := loadConfig(cctx.String("conf-dir"), cctx.StringSlice("conf")...)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		conf = &Config{}
		if err = conf.Parse(); err != nil {
			return nil, err
		}
	}
	if u := cctx.String("base-url"); u != "" {
		conf.Client.BaseURL = u
	}
	return conf.Client, nil
}

func postID(cctx *cli.Context) (string, error) {
	if cctx.NArg() != 1 {
		return "", cli.Exit("usage: "+cctx.Command.UsageText, 2)
	}
	return cctx.Args().First(), nil
}

func incrCommand() *cli.Command {
	return &cli.Command{
		Name:      "incr",
		Usage:     "register one view of a post and print the new total",
		UsageText: "viewcount incr [--base-url URL] <post-id>",
		Flags:     clientFlags,
		Action: func(cctx *cli.Context) error {
			id, err := postID(cctx)
			if err != nil {
				return err
			}
			conf, err := clientConfig(cctx)
			if err != nil {
				return cli.Exit(err, 1)
			}
			vc, err := client.NewClientWithConfig(conf)
			if err != nil {
				return cli.Exit(err, 1)
			}
			total, err := vc.Increment(cctx.Context, id)
			if err != nil {
				return cli.Exit(err, 1)
			}
			fmt.Fprintln(cctx.App.Writer, total)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "print the total views of a post,null when never viewed",
		UsageText: "viewcount get [--base-url URL] <post-id>",
		Flags:     clientFlags,
		Action: func(cctx *cli.Context) error {
			id, err := postID(cctx)
			if err != nil {
				return err
			}
			conf, err := clientConfig(cctx)
			if err != nil {
				return cli.Exit(err, 1)
			}
			vc, err := client.NewClientWithConfig(conf)
			if err != nil {
				return cli.Exit(err, 1)
			}
			total, err := vc.Read(cctx.Context, id)
			if err != nil {
				return cli.Exit(err, 1)
			}
			fmt.Fprintln(cctx.App.Writer, total)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "register one view and keep displaying the total,press enter to refresh",
		UsageText: "viewcount watch [--base-url URL] [--interval 30s] <post-id>",
		Flags: append([]cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "refresh interval,0 disables the periodic refresh",
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "locale of the number format,overrides client.locale",
			},
		}, clientFlags...),
		Action: func(cctx *cli.Context) error {
			id, err := postID(cctx)
			if err != nil {
				return err
			}
			conf, err := clientConfig(cctx)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if l := cctx.String("locale"); l != "" {
				conf.Locale = l
			}
			vc, err := client.NewClientWithConfig(conf)
			if err != nil {
				return cli.Exit(err, 1)
			}

			ctx, cancel := context.WithCancel(cctx.Context)
			defer cancel()
			hook := c.NewShutdownhook()
			hook.AddHook(cancel)
			go hook.WaitShutdown()

			return watch(ctx, conf, vc, id, cctx.Duration("interval"), cctx.App.Reader, cctx.App.Writer)
		},
	}
}

// watch 显示浏览数直到ctx结束,in中的每一行及每个interval都视为一次focus
func watch(ctx context.Context, conf *client.Config, vc *client.Client, id string, interval time.Duration, in io.Reader, out io.Writer) error {
	cache := client.NewCache(vc, client.WithCapacity(conf.CacheSize), client.WithRevalidateTimeout(conf.TimeoutDuration()))
	if conf.CacheFile != "" {
		if err := loadSnapshot(cache, conf.CacheFile); err != nil {
			c.Warnf("load cache from %s fail,err:%v", conf.CacheFile, err)
		}
	}

	display := client.NewViewCounter(id, vc, cache, client.ParseLocale(conf.Locale))
	display.Mount(ctx)
	last := display.Render()
	fmt.Fprintf(out, "%s: %s\n", id, last)

	focus := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case focus <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					select {
					case focus <- struct{}{}:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go cache.WatchFocus(ctx, focus)

	for {
		select {
		case text := <-display.Updates():
			if text != last {
				last = text
				fmt.Fprintf(out, "%s: %s\n", id, text)
			}
		case <-ctx.Done():
			display.Unmount()
			display.Wait()
			cache.Wait()
			if conf.CacheFile != "" {
				if err := saveSnapshot(cache, conf.CacheFile); err != nil {
					c.Warnf("save cache to %s fail,err:%v", conf.CacheFile, err)
				}
			}
			return nil
		}
	}
}

func loadSnapshot(cache *client.Cache, file string) error {
	f, err := os.Open(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	return cache.Load(bufio.NewReader(f))
}

func saveSnapshot(cache *client.Cache, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = cache.Save(w); err != nil {
		f.Close()
		return err
	}
	if err = w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
