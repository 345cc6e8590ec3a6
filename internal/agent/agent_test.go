package agent

import (
	"context"
	"strings"
	"testing"

	"storybuilders/internal/domain"
)

// stubProvider records calls and returns a canned response.
type stubProvider struct {
	calls    int
	messages []domain.Message
	opts     domain.ChatOptions
	reply    string
	err      error
}

func (s *stubProvider) SendMessage(_ context.Context, messages []domain.Message, opts domain.ChatOptions) (*domain.ChatResponse, error) {
	s.calls++
	s.messages = messages
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	reply := s.reply
	if reply == "" {
		reply = "model response"
	}
	return &domain.ChatResponse{Content: reply, Model: opts.Model}, nil
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Ready() bool  { return true }

func testConfig(name string) Config {
	return Config{
		Name:         name,
		Description:  name + " description",
		SystemPrompt: "You are " + name + ".",
		Model:        "test-model",
	}
}

// --- shared formatting helpers ---

func TestFormatUserMessage_NoFiles(t *testing.T) {
	c := core{}
	got := c.formatUserMessage("hello", &Context{})
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatUserMessage_SingleFile(t *testing.T) {
	c := core{}
	tc := &Context{Files: []FileAttachment{{Name: "draft.txt", Content: "Once upon a time."}}}
	got := c.formatUserMessage("please review", tc)

	if !strings.Contains(got, "[Attached file: draft.txt]") {
		t.Fatalf("missing header: %q", got)
	}
	if !strings.Contains(got, "```\nOnce upon a time.\n```") {
		t.Fatalf("missing fenced content: %q", got)
	}
}

func TestFormatUserMessage_MultipleFilesNumbered(t *testing.T) {
	c := core{}
	tc := &Context{Files: []FileAttachment{
		{Name: "ch1.md", Content: "one"},
		{Name: "ch2.md", Content: "two"},
	}}
	got := c.formatUserMessage("review both", tc)

	if !strings.Contains(got, "[Attached files: 2]") {
		t.Fatalf("missing header: %q", got)
	}
	if !strings.Contains(got, "1. ch1.md") || !strings.Contains(got, "2. ch2.md") {
		t.Fatalf("missing numbered sections: %q", got)
	}
	if strings.Index(got, "1. ch1.md") > strings.Index(got, "2. ch2.md") {
		t.Fatalf("files out of order: %q", got)
	}
}

func TestFormatUserMessage_LegacySingleFileMirror(t *testing.T) {
	c := core{}
	tc := &Context{FileName: "old.txt", FileContent: "legacy content here"}
	got := c.formatUserMessage("msg", tc)
	if !strings.Contains(got, "[Attached file: old.txt]") {
		t.Fatalf("legacy mirror ignored: %q", got)
	}
}

func TestEmptyOrGreeting(t *testing.T) {
	c := core{}
	cases := []struct {
		in   string
		want bool
	}{
		{"hi", true},
		{"  HELLO  ", true},
		{"hey", true},
		{"help", true},
		{"short", true}, // under 10 chars
		{"give me a writing prompt", false},
		{"hello there friend", false},
	}
	for _, tt := range cases {
		if got := c.emptyOrGreeting(tt.in); got != tt.want {
			t.Errorf("emptyOrGreeting(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildMessages_HistoryFirstCurrentLast(t *testing.T) {
	c := core{}
	tc := &Context{ThreadHistory: []ThreadMessage{
		{Role: domain.RoleUser, Text: "first"},
		{Role: domain.RoleAssistant, Text: "second"},
	}}
	msgs := c.buildMessages("current", tc)

	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Content != "first" || msgs[0].Role != domain.RoleUser {
		t.Fatalf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Content != "second" || msgs[1].Role != domain.RoleAssistant {
		t.Fatalf("msgs[1] = %+v", msgs[1])
	}
	if msgs[2].Content != "current" || msgs[2].Role != domain.RoleUser {
		t.Fatalf("msgs[2] = %+v", msgs[2])
	}
}

// --- critique gating ---

func TestCritique_ShortNonNarrativeReturnsHelp(t *testing.T) {
	stub := &stubProvider{}
	a := NewCritique(testConfig("Critique"), stub)

	got, err := a.ProcessMessage(context.Background(), "what do you do?", &Context{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != critiqueHelp {
		t.Fatalf("expected help text verbatim, got %q", got)
	}
	if stub.calls != 0 {
		t.Fatal("gateway should not be invoked")
	}
}

func TestCritique_TinyAttachmentReturnsEmptyNotice(t *testing.T) {
	stub := &stubProvider{}
	a := NewCritique(testConfig("Critique"), stub)
	tc := &Context{Files: []FileAttachment{{Name: "story.txt", Content: "   Hello.   "}}}

	got, err := a.ProcessMessage(context.Background(), "critique this", tc)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !strings.Contains(got, "story.txt") || !strings.Contains(got, "appears to be empty") {
		t.Fatalf("expected empty-attachment notice naming the file, got %q", got)
	}
	if stub.calls != 0 {
		t.Fatal("gateway should not be invoked")
	}
}

func TestCritique_AttachmentProceedsToGateway(t *testing.T) {
	stub := &stubProvider{}
	a := NewCritique(testConfig("Critique"), stub)
	tc := &Context{Files: []FileAttachment{{Name: "story.txt", Content: strings.Repeat("A sentence. ", 10)}}}

	if _, err := a.ProcessMessage(context.Background(), "critique this", tc); err != nil {
		t.Fatalf("err: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", stub.calls)
	}
	if !strings.Contains(stub.messages[len(stub.messages)-1].Content, "story.txt") {
		t.Fatal("attachment should be inlined into the current turn")
	}
}

func TestCritique_NarrativeSampleProceedsToGateway(t *testing.T) {
	stub := &stubProvider{}
	a := NewCritique(testConfig("Critique"), stub)
	sample := strings.Repeat("She walked to the door and ", 5) + "paused."

	if _, err := a.ProcessMessage(context.Background(), sample, &Context{}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", stub.calls)
	}
}

func TestCritique_LongTextWithoutMarkersReturnsHelp(t *testing.T) {
	stub := &stubProvider{}
	a := NewCritique(testConfig("Critique"), stub)
	text := strings.Repeat("abc ", 40) // long, but no narrative markers

	got, err := a.ProcessMessage(context.Background(), text, &Context{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got != critiqueHelp {
		t.Fatalf("expected help text, got %q", got)
	}
}

func TestCritique_ThreadHistoryBypassesGating(t *testing.T) {
	stub := &stubProvider{}
	a := NewCritique(testConfig("Critique"), stub)
	tc := &Context{ThreadHistory: []ThreadMessage{{Role: domain.RoleUser, Text: "earlier turn"}}}

	if _, err := a.ProcessMessage(context.Background(), "thanks!", tc); err != nil {
		t.Fatalf("err: %v", err)
	}
	if stub.calls != 1 {
		t.Fatal("thread context should bypass gating")
	}
}

// --- greeting-gated variants ---

func TestGreetingVariants_HelpOnGreeting(t *testing.T) {
	cases := []struct {
		agent Agent
		stub  *stubProvider
		help  string
	}{}
	for _, mk := range []struct {
		make func(Config, domain.Provider) Agent
		help string
	}{
		{func(c Config, p domain.Provider) Agent { return NewCraft(c, p) }, craftHelp},
		{func(c Config, p domain.Provider) Agent { return NewPrompt(c, p) }, promptHelp},
		{func(c Config, p domain.Provider) Agent { return NewCoach(c, p) }, coachHelp},
		{func(c Config, p domain.Provider) Agent { return NewRecommend(c, p) }, recommendHelp},
	} {
		stub := &stubProvider{}
		cases = append(cases, struct {
			agent Agent
			stub  *stubProvider
			help  string
		}{mk.make(testConfig("variant"), stub), stub, mk.help})
	}

	for _, tt := range cases {
		got, err := tt.agent.ProcessMessage(context.Background(), "hi", &Context{})
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if got != tt.help {
			t.Fatalf("expected help text, got %q", got)
		}
		if tt.stub.calls != 0 {
			t.Fatal("gateway should not be invoked for a greeting")
		}

		// The inverse: any non-greeting text of 10+ chars reaches the gateway.
		if _, err := tt.agent.ProcessMessage(context.Background(), "tell me about dialogue", &Context{}); err != nil {
			t.Fatalf("err: %v", err)
		}
		if tt.stub.calls != 1 {
			t.Fatalf("gateway calls = %d, want 1", tt.stub.calls)
		}
	}
}

func TestSend_PassesPersonaOptions(t *testing.T) {
	stub := &stubProvider{}
	a := NewCraft(testConfig("Craft"), stub)

	if _, err := a.ProcessMessage(context.Background(), "prepare a craft talk on voice", &Context{}); err != nil {
		t.Fatalf("err: %v", err)
	}
	if stub.opts.Model != "test-model" {
		t.Fatalf("model = %q", stub.opts.Model)
	}
	if stub.opts.SystemPrompt != "You are Craft." {
		t.Fatalf("system prompt = %q", stub.opts.SystemPrompt)
	}
	if stub.opts.MaxTokens != responseMaxTokens {
		t.Fatalf("max tokens = %d", stub.opts.MaxTokens)
	}
}
