package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL, DefaultModel: "test-model"}, zap.NewNop())
}

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		lastBody map[string]any
	)

	BeforeEach(func() {
		ctx = context.Background()
		lastBody = nil
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	Describe("Chat", func() {
		Context("with a healthy provider", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					raw, _ := io.ReadAll(r.Body)
					Expect(json.Unmarshal(raw, &lastBody)).To(Succeed())

					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`{
						"model": "qwen2.5",
						"choices": [{"message": {"role": "assistant", "content": "Hello there."}, "finish_reason": "stop"}],
						"usage": {"prompt_tokens": 10, "completion_tokens": 4, "total_tokens": 14}
					}`))
				}))
			})

			It("returns the first choice content and metadata", func() {
				res, err := testClient(server.URL).Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Content).To(Equal("Hello there."))
				Expect(res.Model).To(Equal("qwen2.5"))
				Expect(res.FinishReason).To(Equal("stop"))
				Expect(res.Usage).NotTo(BeNil())
				Expect(res.Usage.TotalTokens).To(Equal(14))
			})

			It("posts to the chat/completions path under the base URL", func() {
				pathServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
					_, _ = w.Write([]byte(`{"choices": []}`))
				}))
				defer pathServer.Close()

				_, err := testClient(pathServer.URL + "/v1/").Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("omits absent optional fields from the body", func() {
				_, err := testClient(server.URL).Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(lastBody).NotTo(HaveKey("temperature"))
				Expect(lastBody).NotTo(HaveKey("max_tokens"))
				Expect(lastBody).NotTo(HaveKey("stream"))
			})

			It("sends supplied optional fields", func() {
				_, err := testClient(server.URL).Chat(ctx, ChatRequest{
					Messages:    []Message{{Role: RoleUser, Content: "hi"}},
					Model:       "override",
					Temperature: Temperature(0.0),
					MaxTokens:   MaxTokens(128),
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(lastBody["model"]).To(Equal("override"))
				Expect(lastBody["temperature"]).To(BeNumerically("==", 0))
				Expect(lastBody["max_tokens"]).To(BeNumerically("==", 128))
			})

			It("falls back to the default model when none is supplied", func() {
				_, err := testClient(server.URL).Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(lastBody["model"]).To(Equal("test-model"))
			})
		})

		Context("when the provider returns no choices", func() {
			It("returns empty content without error", func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`{"model": "qwen2.5", "choices": []}`))
				}))
				res, err := testClient(server.URL).Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Content).To(BeEmpty())
				Expect(res.Model).To(Equal("qwen2.5"))
			})
		})

		Context("when the provider returns a non-2xx status", func() {
			It("returns a ProviderError carrying the status", func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					http.Error(w, "model not loaded", http.StatusServiceUnavailable)
				}))
				_, err := testClient(server.URL).Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})

				var provErr *ProviderError
				Expect(errors.As(err, &provErr)).To(BeTrue())
				Expect(provErr.Status).To(Equal(http.StatusServiceUnavailable))
				Expect(provErr.Body).To(ContainSubstring("model not loaded"))
			})
		})

		Context("when the provider is unreachable", func() {
			It("returns a TransportError", func() {
				_, err := testClient("http://127.0.0.1:1").Chat(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				})

				var transErr *TransportError
				Expect(errors.As(err, &transErr)).To(BeTrue())
			})
		})
	})

	Describe("ChatStream", func() {
		Context("with a healthy streaming provider", func() {
			BeforeEach(func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					raw, _ := io.ReadAll(r.Body)
					Expect(json.Unmarshal(raw, &lastBody)).To(Succeed())

					w.Header().Set("Content-Type", "text/event-stream")
					_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
					_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
					_, _ = io.WriteString(w, "data: [DONE]\n\n")
				}))
			})

			It("forwards each delta as a normalized frame and terminates with [DONE]", func() {
				var out strings.Builder
				err := testClient(server.URL).ChatStream(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				}, &out)
				Expect(err).NotTo(HaveOccurred())

				frames := strings.Split(strings.TrimSuffix(out.String(), "\n\n"), "\n\n")
				Expect(frames).To(HaveLen(3))
				Expect(frames[0]).To(ContainSubstring("Hel"))
				Expect(frames[1]).To(ContainSubstring("lo"))
				Expect(frames[2]).To(Equal("data: [DONE]"))
			})

			It("sets the stream flag on the request body", func() {
				var out strings.Builder
				err := testClient(server.URL).ChatStream(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				}, &out)
				Expect(err).NotTo(HaveOccurred())
				Expect(lastBody["stream"]).To(BeTrue())
			})
		})

		Context("when the provider rejects the stream", func() {
			It("encodes the failure as an in-band error frame plus the sentinel", func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					http.Error(w, "bad model", http.StatusBadRequest)
				}))

				var out strings.Builder
				err := testClient(server.URL).ChatStream(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				}, &out)
				Expect(err).NotTo(HaveOccurred())
				Expect(out.String()).To(ContainSubstring(`"error"`))
				Expect(out.String()).To(HaveSuffix("data: [DONE]\n\n"))
			})
		})

		Context("when the provider closes the stream without a done sentinel", func() {
			It("appends the sentinel so the stream still terminates", func() {
				server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", "text/event-stream")
					_, _ = io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
					// Connection drops here, no [DONE] frame.
				}))

				var out strings.Builder
				err := testClient(server.URL).ChatStream(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				}, &out)
				Expect(err).NotTo(HaveOccurred())
				Expect(out.String()).To(ContainSubstring("Hel"))
				Expect(out.String()).To(HaveSuffix("data: [DONE]\n\n"))
			})
		})

		Context("when the provider is unreachable", func() {
			It("still terminates the stream cleanly", func() {
				var out strings.Builder
				err := testClient("http://127.0.0.1:1").ChatStream(ctx, ChatRequest{
					Messages: []Message{{Role: RoleUser, Content: "hi"}},
				}, &out)
				Expect(err).NotTo(HaveOccurred())
				Expect(out.String()).To(ContainSubstring(`"error"`))
				Expect(out.String()).To(HaveSuffix("data: [DONE]\n\n"))
			})
		})
	})
})
