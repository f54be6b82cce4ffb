package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"youcomagents/internal/config"
	"youcomagents/internal/lm"
	"youcomagents/internal/provider"
	"youcomagents/pkg/logger"
)

// chatFile is the -input format: a list of role/text pairs.
type chatFile []struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func main() {
	var configPath string
	var model string
	var inputPath string
	var list bool
	var tokens bool
	var bridge string

	flag.StringVar(&configPath, "config", "", "Path to config file (default $YOUCOM_AGENTS_CONFIG or ~/.config/youcom-agents/config.yaml)")
	flag.StringVar(&model, "model", "youcom-agent", "Agent ID to ask")
	flag.StringVar(&inputPath, "input", "", "Path to a chat history JSON file; default is the arguments, or stdin")
	flag.BoolVar(&list, "list", false, "List available agents and exit")
	flag.BoolVar(&tokens, "tokens", false, "Print the token estimate of the prompt instead of asking")
	flag.StringVar(&bridge, "server", "", "Ask a running bridge at this URL (e.g. http://127.0.0.1:8787) instead of calling You.com directly")
	flag.Parse()

	if bridge != "" && !list && !tokens {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		messages, err := readMessages(inputPath, flag.Args(), os.Stdin)
		if err != nil {
			logger.Fatalf("Reading input: %v", err)
		}
		if err := askRemote(ctx, bridge, model, messages, os.Stdout); err != nil {
			logger.Fatalf("Asking bridge: %v", err)
		}
		return
	}

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			logger.Fatalf("Resolving config path: %v", err)
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	closeLog, err := logger.Configure(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output})
	if err != nil {
		logger.Fatalf("Configuring logger: %v", err)
	}
	defer closeLog()

	p, err := provider.FromConfig(cfg, config.Environ{})
	if err != nil {
		logger.Fatalf("Registering agents: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if list {
		for _, info := range p.ProvideChatInformation(ctx, lm.PrepareOptions{}) {
			fmt.Printf("%s\t%s\t%s\t%d/%d\n", info.ID, info.Name, info.Version, info.MaxInputTokens, info.MaxOutputTokens)
		}
		return
	}

	messages, err := readMessages(inputPath, flag.Args(), os.Stdin)
	if err != nil {
		logger.Fatalf("Reading input: %v", err)
	}

	info, ok := p.Lookup(model)
	if !ok {
		info = lm.ChatInformation{ID: model}
	}

	if tokens {
		total := 0
		for _, m := range messages {
			total += p.ProvideTokenCount(ctx, info, m)
		}
		fmt.Println(total)
		return
	}

	p.ProvideChatResponse(ctx, info, messages, lm.ResponseOptions{ToolMode: lm.ToolModeAuto}, lm.ProgressFunc(func(part lm.Part) {
		if t, ok := part.(lm.TextPart); ok {
			fmt.Println(t.Value)
		}
	}))
}

// readMessages loads the chat from a JSON file, else joins args into one user
// message, else reads stdin.
func readMessages(path string, args []string, stdin io.Reader) ([]lm.ChatMessage, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var chat chatFile
		if err := json.Unmarshal(data, &chat); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		out := make([]lm.ChatMessage, len(chat))
		for i, m := range chat {
			role := lm.Role(m.Role)
			if role == "" {
				role = lm.RoleUser
			}
			out[i] = lm.ChatMessage{Role: role, Content: []lm.Part{lm.TextPart{Value: m.Text}}}
		}
		return out, nil
	}

	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	return []lm.ChatMessage{{Role: lm.RoleUser, Content: []lm.Part{lm.TextPart{Value: text}}}}, nil
}
