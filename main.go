package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.fiblab.net/sim/connectivity/network"
	"git.fiblab.net/sim/connectivity/store"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

var (
	// 配置信息，显式给出时覆盖配置文件与环境变量
	configPath = flag.String("config", "", "yaml config file path (empty means defaults + env)")
	listenAddr = flag.String("listen", DEFAULT_LISTEN, "http listening address")
	logLevel   = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")
	storePath  = flag.String("store", "", "network snapshots [format: {dir} or {db}.{col}]")
	mongoURI   = flag.String("mongo_uri", "", "mongo db uri")
	cacheDir   = flag.String("cache", "", "snapshot cache dir path (empty means disable cache)")
	year       = flag.Int("year", DEFAULT_YEAR, "the year of the live network, other years are read-only")
	workers    = flag.Int("workers", 0, "floodfill worker count (0 means GOMAXPROCS)")

	// 性能测试
	benchmark = flag.Bool("benchmark", false, "benchmark mode")
	pprofAddr = flag.String("pprof", "", "pprof listening address (empty means disable pprof)")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

// 命令行中显式给出的参数覆盖config
func overrideByFlags(c *Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			c.Listen = *listenAddr
		case "log-level":
			c.LogLevel = *logLevel
		case "pprof":
			c.Pprof = *pprofAddr
		case "store":
			c.Store = *storePath
		case "mongo_uri":
			c.MongoURI = *mongoURI
		case "cache":
			c.Cache = *cacheDir
		case "year":
			c.Year = *year
		case "workers":
			c.Workers = *workers
		}
	})
}

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	flag.Parse()

	config, err := ReadConfig(*configPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := config.ApplyEnv(); err != nil {
		log.Fatalf("%v", err)
	}
	overrideByFlags(&config)
	if err := config.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logrus.SetLevel(LOG_LEVELS[config.LogLevel])

	path, err := store.NewPath(config.Store)
	if err != nil {
		log.Fatalf("invalid store path: %v", err)
	}
	st, closeStore, err := store.Open(path, config.MongoURI, config.Cache)
	if err != nil {
		log.Fatalf("failed to open store %s: %v", path, err)
	}
	// 加载当前年份网络
	engine, err := network.NewEngine(context.Background(), st, config.Year, config.Workers)
	if err != nil {
		log.Fatalf("failed to load network from %s: %v", path, err)
	}
	server := NewConnectivityServer(engine, config.MaxBodyBytes)

	if config.Pprof != "" {
		// 启动pprof
		startHTTPDebugger(config.Pprof)
	}

	if *benchmark {
		// 性能测试
		runBenchmark(engine)
		closeStore()
		return
	}

	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:              config.Listen,
		Handler:           h2c.NewHandler(server.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		// 等待进行中的请求完成，修改过的网络随之撤销
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			log.Warnf("shutdown: %v", err)
			s.Close()
		}
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	closeStore()
	time.Sleep(1 * time.Second) // 延迟等待"优雅退出"
	log.Info("connectivity closes")
}
