// dialogue-lint 检查对话脚本中的指令错误
//
// 用法:
//
//	go run ./cmd/dialogue-lint                       # 检查 data/scripts 下所有脚本
//	go run ./cmd/dialogue-lint path/to/a.txt b.txt  # 检查指定文件
//
// 未闭合的 [ 或 < 会中止该行的打印，返回码为 1；未知指令与非法参数只输出警告。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/session"
)

func main() {
	configPath := flag.String("config", "data/dialogue.yaml", "对话配置文件路径（宏定义来源）")
	dir := flag.String("dir", "data/scripts", "未指定文件时检查的脚本目录")
	strict := flag.Bool("strict", false, "警告也视为失败")
	flag.Parse()

	cfg, err := config.LoadDialogueConfig(*configPath)
	if err != nil {
		fmt.Printf("❌ 配置无效: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 配置有效: %s（%d 个宏）\n", *configPath, len(cfg.Directives.Macros))

	proc, err := session.NewProcessor(cfg)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	files := flag.Args()
	if len(files) == 0 {
		files, err = filepath.Glob(filepath.Join(*dir, "*.txt"))
		if err != nil {
			fmt.Printf("错误: 遍历目录失败: %v\n", err)
			os.Exit(1)
		}
		sort.Strings(files)
	}
	if len(files) == 0 {
		fmt.Printf("错误: 没有找到脚本: %s\n", *dir)
		os.Exit(1)
	}

	sources := make([]source, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			fmt.Printf("警告: 无法读取文件 %s: %v\n", f, err)
			continue
		}
		sources = append(sources, source{Name: f, Text: string(data)})
	}

	results, err := lintAll(context.Background(), sources, proc, cfg.Playback)
	if err != nil {
		fmt.Printf("错误: %v\n", err)
		os.Exit(1)
	}

	var errorsFound, warnings int
	for i, findings := range results {
		if len(findings) == 0 {
			fmt.Printf("✅ %s\n", sources[i].Name)
			continue
		}
		fmt.Printf("❌ %s\n", sources[i].Name)
		for _, f := range findings {
			level := "warning"
			if f.fatal() {
				level = "error"
				errorsFound++
			} else {
				warnings++
			}
			fmt.Printf("  %s: %s\n", level, strings.TrimPrefix(f.String(), sources[i].Name+":"))
		}
	}

	fmt.Println("=== 汇总 ===")
	fmt.Printf("脚本: %d  错误: %d  警告: %d\n", len(sources), errorsFound, warnings)
	if errorsFound > 0 || (*strict && warnings > 0) {
		os.Exit(1)
	}
}
