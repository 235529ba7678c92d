package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"missiledefence/internal/server"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "JSON 配置文件路径")
	address := flag.String("addr", server.DefaultAddr, "服务器监听地址")
	transport := flag.String("transport", server.DefaultTransport, "传输协议 tcp|kcp")
	wsAddr := flag.String("ws", "", "WebSocket 观战入口地址，留空不启用")
	tickRate := flag.Int("tps", server.DefaultTickRate, "服务器 TPS")
	seed := flag.Int64("seed", 0, "地形随机种子，0 表示每局随机")
	logLevel := flag.String("log-level", "info", "日志级别 debug|info|warn|error")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal("日志级别无效", "level", *logLevel, "err", err)
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)

	cfg, err := server.LoadConfig(*configPath, server.DefaultAppConfig())
	if err != nil {
		log.Fatal("加载配置失败", "path", *configPath, "err", err)
	}

	// 只有显式给出的参数才覆盖配置文件
	var overrides server.Overrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			overrides.Addr = address
		case "transport":
			overrides.Transport = transport
		case "ws":
			overrides.WSAddr = wsAddr
		case "tps":
			overrides.TickRate = tickRate
		case "seed":
			overrides.Seed = seed
		}
	})
	cfg = overrides.Apply(cfg)

	// 创建服务器
	gameServer := server.NewGameServer(cfg)

	// 启动服务器（在新的 goroutine 中）
	go func() {
		if err := gameServer.Start(); err != nil {
			log.Fatal("服务器启动失败", "err", err)
		}
	}()

	<-gameServer.Ready()
	log.Info("导弹防御服务器运行中，按 Ctrl+C 停止",
		"addr", gameServer.Addr(),
		"transport", cfg.Transport,
		"tps", cfg.TickRate,
		"maxSessions", cfg.MaxSessions,
		"sessionTTL", cfg.SessionTTL)

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	gameServer.Shutdown()
}
