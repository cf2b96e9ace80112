// Package chatcmder provides the chat command for interactive language
// practice against a running lingopod server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lingopod/lingopod/pkg/cliui"
	"github.com/lingopod/lingopod/pkg/config"
	"github.com/lingopod/lingopod/pkg/dotdir"
	"github.com/lingopod/lingopod/pkg/logger"
	"github.com/lingopod/lingopod/pkg/sse"
)

var (
	userPrompt  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	tutorPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("tutor> ")
)

type chatCommander struct {
	target string
	model  string
	reset  bool
	debug  bool

	logger *zap.Logger
}

// chatMessage mirrors the server's message shape.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the body for POST /chat/stream.
type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Model    string        `json:"model,omitempty"`
}

// chatReply is the single content frame the stream carries.
type chatReply struct {
	Reply string `json:"reply"`
	Model string `json:"model,omitempty"`
	Error string `json:"error,omitempty"`
}

const chatLongDesc string = `Start an interactive practice conversation.

The chat command talks to a running lingopod server, which keeps every reply
short, symbol-free, and speakable. The conversation is saved in the
.lingopod/ directory and resumes on the next run.

Examples:
  lingopod chat
  lingopod chat --model qwen3:4b
  lingopod chat --reset`

const chatShortDesc string = "Interactive practice conversation"

var chatFlags = config.FlagSet{
	config.FlagTarget: {
		Name: "target", Shorthand: "t",
		ViperKey:    "client.target",
		Description: "Lingopod server URL",
	},
	config.FlagModel: {
		Name: "model", Shorthand: "m",
		ViperKey:    "llm.default_model",
		Description: "Model name (empty lets the server choose)",
	},
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("target") {
				cmder.target = cfg.Client.Target
			}
			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.LLM.DefaultModel
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(configDir)
		},
	}

	config.AddStringFlag(cmd, chatFlags, config.FlagTarget, &cmder.target)
	config.AddStringFlag(cmd, chatFlags, config.FlagModel, &cmder.model)
	cmd.Flags().BoolVar(&cmder.reset, "reset", false, "Discard the saved conversation and start fresh")

	return cmd
}

func (c *chatCommander) run(configDir string) error {
	c.logger = logger.New(c.debug)
	defer func() { _ = c.logger.Sync() }()

	dotdirManager := dotdir.NewManager()

	if c.reset {
		if err := dotdirManager.ClearSession(configDir); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}

	session, err := dotdirManager.LoadSessionState(configDir)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	var messages []chatMessage
	fmt.Println()
	if session != nil && len(session.Messages) > 0 {
		fmt.Printf("  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(session.Messages))),
		)
		for _, msg := range session.Messages {
			messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
		}
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Server:"),
		cliui.ValueStyle.Render(c.target),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		messages = append(messages, chatMessage{Role: "user", Content: input})

		reply, err := c.send(messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			// Remove the failed user message so we can retry
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, chatMessage{Role: "assistant", Content: reply})

		if err := c.saveSession(dotdirManager, configDir, messages); err != nil {
			c.logger.Warn("saving session failed", zap.Error(err))
		}

		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// send posts the conversation to the server's streaming endpoint and prints
// the reply as it arrives.
func (c *chatCommander) send(messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Messages: messages, Model: c.model})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		zap.String("target", c.target),
		zap.Int("message_count", len(messages)),
	)

	url := c.target + "/chat/stream"
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	client := &http.Client{
		// Constrained replies can take several upstream round-trips
		Timeout: 5 * time.Minute,
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	fmt.Print(tutorPrompt)

	var reply string
	reader := sse.NewReader(resp.Body)
	for {
		event, err := reader.Next()
		if err != nil {
			return "", fmt.Errorf("reading stream: %w", err)
		}
		if event == nil || event.Data == sse.Done {
			break
		}

		var frame chatReply
		if err := json.Unmarshal([]byte(event.Data), &frame); err != nil {
			c.logger.Debug("failed to parse stream frame",
				zap.Error(err),
				zap.String("data", event.Data),
			)
			continue
		}

		if frame.Error != "" {
			return "", fmt.Errorf("server error: %s", frame.Error)
		}
		if frame.Reply != "" {
			fmt.Print(frame.Reply)
			reply = frame.Reply
		}
	}
	fmt.Println()

	return reply, nil
}

func (c *chatCommander) saveSession(manager *dotdir.Manager, configDir string, messages []chatMessage) error {
	state := &dotdir.SessionState{}
	for _, msg := range messages {
		state.Messages = append(state.Messages, dotdir.SessionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return manager.SaveSession(state, configDir)
}
