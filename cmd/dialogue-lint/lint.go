package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/directive"
	"github.com/decker502/dialogue/pkg/script"
)

// finding 脚本中的一处问题
type finding struct {
	Script string
	Line   int // 从 1 开始，与编辑器一致
	Offset int // 原始行中的列号，与 ParseFault.Offset 相同
	Err    error
}

func (f finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %v", f.Script, f.Line, f.Offset, f.Err)
}

// fatal ParseFault 会中止该行的打印，其余问题只产生警告
func (f finding) fatal() bool {
	var pf *script.ParseFault
	return errors.As(f.Err, &pf)
}

// source 待检查的脚本
type source struct {
	Name string
	Text string
}

// lintScript 按播放引擎的扫描顺序检查一段脚本
// 播放配置在行之间延续，与实际播放时一致
func lintScript(name, text string, proc *directive.Processor, cfg config.PlaybackConfig) []finding {
	var out []finding
	settings := directive.NewSettings(cfg)

	lines := script.Split(text)
	if len(lines) == 0 {
		return []finding{{Script: name, Line: 0, Offset: 0, Err: errors.New("script has no printable lines")}}
	}

	for i, raw := range lines {
		l := script.NewLine(i, raw)
		report := func(offset int, err error) {
			out = append(out, finding{Script: name, Line: i + 1, Offset: offset, Err: err})
		}

		for offset := 0; offset < l.Len(); {
			switch l.At(offset) {
			case '[':
				err := l.ExtractDirectives(offset, func(d script.Directive) {
					if _, err := proc.Apply(&settings, d.Raw); err != nil {
						report(d.Column, err)
					}
				})
				if err != nil {
					report(l.Column(offset), err)
					offset = l.Len()
				}
			case '<':
				_, next, err := l.ScanFormat(offset)
				if err != nil {
					report(l.Column(offset), err)
					offset = l.Len()
					continue
				}
				offset = next
			default:
				offset++
			}
		}
	}
	return out
}

// lintAll 并发检查多个脚本，结果按输入顺序返回
func lintAll(ctx context.Context, sources []source, proc *directive.Processor, cfg config.PlaybackConfig) ([][]finding, error) {
	results := make([][]finding, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = lintScript(src.Name, src.Text, proc, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
