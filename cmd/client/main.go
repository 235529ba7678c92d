package main

import (
	"flag"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	client "missiledefence/internal/client"
	"missiledefence/pkg/ai"
	"missiledefence/pkg/core"
)

func main() {
	serverAddr := flag.String("server", "", "服务器地址，留空为本地模式")
	proto := flag.String("proto", "tcp", "联机协议 tcp|kcp")
	name := flag.String("name", "player", "玩家名")
	scale := flag.Int("scale", 1, "窗口缩放倍数")
	seed := flag.Int64("seed", 0, "本地模式的地形种子，0 表示随机")
	autopilot := flag.String("autopilot", "", "自动驾驶难度 normal|hard，留空为手动")
	logLevel := flag.String("log-level", "info", "日志级别 debug|info|warn|error")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal("日志级别无效", "level", *logLevel, "err", err)
	}
	log.SetLevel(level)

	var pilot *ai.AIController
	switch *autopilot {
	case "":
	case "normal":
		pilot = ai.NewAIControllerWithConfig(time.Now().UnixNano(), &ai.AIConfigNormal)
	case "hard":
		pilot = ai.NewAIControllerWithConfig(time.Now().UnixNano(), &ai.AIConfigHard)
	default:
		log.Fatal("未知的自动驾驶难度", "autopilot", *autopilot)
	}

	var (
		game          ebiten.Game
		width, height int
		title         string
	)

	if *serverAddr == "" {
		cfg := core.DefaultConfig()
		cfg.Seed = *seed
		if cfg.Seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}
		local := client.NewGame(cfg)
		local.SetAutopilot(pilot)
		game = local
		width, height = cfg.Width, cfg.Height
		title = "Missile Defence"
		log.Info("本地模式", "seed", cfg.Seed)
	} else {
		nc := client.NewNetworkClient(*serverAddr, *proto, *name)
		if err := nc.Connect(""); err != nil {
			log.Fatal("连接服务器失败", "addr", *serverAddr, "err", err)
		}
		defer nc.Close()

		w := nc.Welcome()
		remote := client.NewNetworkGameClient(nc)
		remote.SetAutopilot(pilot)
		game = remote
		width, height = int(w.Width), int(w.Height)
		title = "Missile Defence [" + w.SessionID + "]"
	}

	// 设置窗口选项
	s := max(1, *scale)
	ebiten.SetWindowSize(width*s, height*s)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetTPS(core.TPS)

	// 运行游戏
	if err := ebiten.RunGame(game); err != nil {
		log.Error("游戏异常退出", "err", err)
	}
}
