package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/edu-guide/backend/internal/analysis/intent"
	"github.com/zhouzirui/edu-guide/backend/internal/config"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
	"github.com/zhouzirui/edu-guide/backend/internal/service/ai"
	"github.com/zhouzirui/edu-guide/backend/internal/service/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/service/guidance"
	"github.com/zhouzirui/edu-guide/backend/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	offline := flag.Bool("offline", false, "不调用大模型，只使用策划内容回答")
	precedence := flag.String("precedence", "", "curated 或 generative，默认使用配置")
	verbose := flag.Bool("v", false, "输出分类和来源等调试信息")
	timeout := flag.Duration("timeout", 45*time.Second, "单轮对话超时时间")
	script := flag.String("script", "", "从文件读取消息（每行一条），留空则交互输入")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	logMode := "production"
	if *verbose {
		logMode = "development"
	}
	zlog, err := logger.New(logMode)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer zlog.Sync()

	opts := chat.Options{
		Precedence: chat.Precedence(cfg.AI.Precedence),
		RetryOnce:  cfg.AI.RetryOnce,
	}
	if *precedence != "" {
		opts.Precedence = chat.Precedence(*precedence)
	}

	if !*offline && cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(context.Background(), cfg.AI, zlog)
		if err != nil {
			log.Printf("[WARN] 大模型初始化失败，使用离线模式: %v", err)
		} else {
			opts.Generator = aiSvc
			log.Printf("使用模型提供方: %s", aiSvc.ProviderName())
		}
	} else {
		log.Println("离线模式：仅使用策划内容")
	}

	svc := chat.NewService(store.NewMemory(), intent.NewClassifier(),
		guidance.NewComposer(knowledge.MustDefault()), opts, zlog)

	var input io.Reader = os.Stdin
	interactive := *script == ""
	if !interactive {
		f, err := os.Open(*script)
		if err != nil {
			log.Fatalf("无法打开脚本文件: %v", err)
		}
		defer f.Close()
		input = f
	}

	if err := converse(svc, input, os.Stdout, interactive, *verbose, *timeout); err != nil {
		log.Fatalf("对话中断: %v", err)
	}
}

// converse feeds each input line to the state machine. "/reset" starts a
// new session and "/quit" ends the loop.
func converse(svc *chat.Service, in io.Reader, out io.Writer, interactive, verbose bool, timeout time.Duration) error {
	scanner := bufio.NewScanner(in)
	sessionID := ""

	prompt := func() {
		if interactive {
			fmt.Fprint(out, "\nyou> ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !interactive {
			fmt.Fprintf(out, "\nyou> %s\n", line)
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			result, err := svc.Reset(context.Background(), sessionID)
			if err != nil {
				return err
			}
			sessionID = result.SessionID
			fmt.Fprintf(out, "bot> %s\n", result.Message)
			prompt()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		reply, err := svc.Handle(ctx, sessionID, line)
		cancel()
		if err != nil {
			return err
		}
		sessionID = reply.SessionID

		fmt.Fprintf(out, "bot> %s\n", reply.Text)
		if verbose {
			fmt.Fprintf(out, "     [session=%s stage=%s category=%s source=%s", reply.SessionID, reply.Stage, reply.Category, reply.Source)
			if reply.FailureKind != "" {
				fmt.Fprintf(out, " failure=%s", reply.FailureKind)
			}
			if !reply.Persisted {
				fmt.Fprintf(out, " persisted=false")
			}
			fmt.Fprintln(out, "]")
		}
		prompt()
	}
	return scanner.Err()
}
