package chatcmder_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	chatcmder "github.com/lingopod/lingopod/cmd/lingopod/chat"
	"github.com/lingopod/lingopod/pkg/sse"
)

var _ = Describe("NewChatCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := chatcmder.NewChatCmd()
		Expect(cmd.Use).To(Equal("chat"))
	})

	It("has --model flag with shorthand", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("model")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("m"))
	})

	It("has --target flag with default value", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("http://localhost:8000"))
	})

	It("has --reset flag", func() {
		cmd := chatcmder.NewChatCmd()
		flag := cmd.Flags().Lookup("reset")
		Expect(flag).NotTo(BeNil())
	})
})

var _ = Describe("Chat stream format", func() {
	// These tests validate the request/frame JSON shapes the chat command
	// exchanges with the server's /chat/stream endpoint.

	Describe("request serialization", func() {
		type chatRequest struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Model string `json:"model,omitempty"`
		}

		It("serializes a basic request correctly", func() {
			req := chatRequest{
				Messages: []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				}{
					{Role: "user", Content: "Hello!"},
				},
				Model: "qwen3:4b",
			}

			data, err := json.Marshal(req)
			Expect(err).NotTo(HaveOccurred())

			var parsed map[string]any
			err = json.Unmarshal(data, &parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed["model"]).To(Equal("qwen3:4b"))

			messages := parsed["messages"].([]any)
			Expect(messages).To(HaveLen(1))
			msg := messages[0].(map[string]any)
			Expect(msg["role"]).To(Equal("user"))
			Expect(msg["content"]).To(Equal("Hello!"))
		})

		It("omits the model field when empty", func() {
			req := chatRequest{
				Messages: []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				}{
					{Role: "user", Content: "hi"},
				},
			}

			data, err := json.Marshal(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).NotTo(ContainSubstring("model"))
		})
	})

	Describe("reply frame parsing", func() {
		type chatReply struct {
			Reply string `json:"reply"`
			Model string `json:"model,omitempty"`
			Error string `json:"error,omitempty"`
		}

		It("parses a content frame", func() {
			raw := `{"reply":"That sounds fun. What did you eat there?","model":"qwen3:4b"}`

			var frame chatReply
			err := json.Unmarshal([]byte(raw), &frame)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame.Reply).To(Equal("That sounds fun. What did you eat there?"))
			Expect(frame.Model).To(Equal("qwen3:4b"))
			Expect(frame.Error).To(BeEmpty())
		})

		It("parses an in-band error frame", func() {
			raw := `{"error":"upstream request failed"}`

			var frame chatReply
			err := json.Unmarshal([]byte(raw), &frame)
			Expect(err).NotTo(HaveOccurred())
			Expect(frame.Error).To(Equal("upstream request failed"))
			Expect(frame.Reply).To(BeEmpty())
		})
	})
})

var _ = Describe("Streaming server interaction", func() {
	It("reads a reply frame and sentinel from a mock server", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/chat/stream"))
			Expect(r.Method).To(Equal("POST"))

			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)

			fmt.Fprint(w, "data: {\"reply\":\"I like trains too.\",\"model\":\"qwen3:4b\"}\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
		}))
		defer server.Close()

		body := `{"messages":[{"role":"user","content":"I like trains"}]}`
		resp, err := http.Post(server.URL+"/chat/stream", "application/json", strings.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		reader := sse.NewReader(resp.Body)

		event, err := reader.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(event).NotTo(BeNil())

		var frame struct {
			Reply string `json:"reply"`
		}
		Expect(json.Unmarshal([]byte(event.Data), &frame)).To(Succeed())
		Expect(frame.Reply).To(Equal("I like trains too."))

		event, err = reader.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(event).NotTo(BeNil())
		Expect(event.Data).To(Equal(sse.Done))
	})
})
