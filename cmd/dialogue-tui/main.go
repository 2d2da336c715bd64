// dialogue-tui 在终端中播放对话脚本
//
// 用法:
//
//	go run ./cmd/dialogue-tui -script intro
//	go run ./cmd/dialogue-tui -script path/to/custom.txt -config data/dialogue.yaml
//
// 嵌入示例脚本从 -data 指定的目录读取（默认当前目录，即仓库根目录）。
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/embedded"
	"github.com/decker502/dialogue/pkg/logging"
	"github.com/decker502/dialogue/pkg/session"
	"github.com/decker502/dialogue/pkg/settings"
)

func main() {
	scriptRef := flag.String("script", "intro", "示例脚本名称或 .txt 文件路径")
	configPath := flag.String("config", "", "对话配置文件路径（默认 <data>/data/dialogue.yaml）")
	dataRoot := flag.String("data", ".", "包含 data/ 目录的根路径")
	logFile := flag.String("log", "", "日志文件路径（终端界面占用 stdout，默认不输出日志）")
	flag.Parse()

	embedded.Init(os.DirFS(*dataRoot))

	cfg, err := session.LoadConfig(*configPath)
	if err != nil {
		if *configPath != "" {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	// 日志只写文件，避免破坏终端界面
	logging.Init(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  "json",
		File:    *logFile,
		Console: io.Discard,
	})
	defer logging.Close()

	text, err := session.LoadScript(*scriptRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading script: %v\n", err)
		os.Exit(1)
	}

	prefs, err := settings.Open("dialogue")
	if err != nil {
		logging.L().Warn("preferences will not be persisted", "error", err)
	}
	p := prefs.Get()

	diags := &diagnostics{}
	sess, err := session.New(cfg, session.Options{
		Logger:       logging.L(),
		Preferences:  &p,
		OnDiagnostic: diags.add,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating session: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	program := tea.NewProgram(newModel(sess, text, diags), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
