// Package bridge turns an incoming chat-platform message into a model
// reply: it assembles the conversation context, runs the enrichment
// pipeline (images, linked pages, web search), invokes the router, and
// maintains the rolling history.
package bridge

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tawada/discord-AI-bot/chat"
	"github.com/tawada/discord-AI-bot/emit"
	"github.com/tawada/discord-AI-bot/history"
	"github.com/tawada/discord-AI-bot/router"
	"github.com/tawada/discord-AI-bot/search"
	"github.com/tawada/discord-AI-bot/web"
)

// FailureReply is the fixed user-facing message when every provider
// failed. Kept apologetic and vague on purpose; the details go to logs.
const FailureReply = "申し訳ありません、現在応答できません。しばらくしてからもう一度お試しください。"

// noSearchResults is injected as context when a search ran but found
// nothing, so the model can say so instead of hallucinating.
const noSearchResults = "検索結果: 関連する情報が見つかりませんでした。"

// knowledgeKeywords mark a message as a question that may need external
// information.
var knowledgeKeywords = []string{"教えて", "とは", "何", "どうやって", "方法"}

// PageFetcher retrieves a raw page body. *web.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Attachment is a platform-agnostic view of a message attachment.
type Attachment struct {
	Filename    string
	URL         string
	ContentType string
}

// Incoming is a platform-agnostic view of a received chat message.
type Incoming struct {
	ChannelID   string
	Author      string
	Content     string
	Attachments []Attachment
}

// Options configures a Bridge.
type Options struct {
	// TextModel is the model requested for every call. Routing decides
	// which provider actually serves it.
	TextModel string

	// RolePrompt is the persona system prompt prepended to every
	// conversation.
	RolePrompt string

	// RoleName is the bot's display name. User turns are prefixed with
	// the author's name and the conversation is primed with an assistant
	// turn carrying this name, mirroring the "name:" convention, so the
	// model answers in character.
	RoleName string
}

// Bridge wires the router, evaluator, search, and history together.
type Bridge struct {
	router  *router.Router
	eval    *router.Evaluator
	search  search.Searcher
	fetcher PageFetcher
	history *history.Store
	emitter emit.Emitter
	opts    Options
}

// New creates a Bridge. search and fetcher may be nil, which disables
// the corresponding enrichment. A nil emitter discards events.
func New(r *router.Router, eval *router.Evaluator, searcher search.Searcher, fetcher PageFetcher, store *history.Store, emitter emit.Emitter, opts Options) *Bridge {
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}
	if opts.TextModel == "" {
		opts.TextModel = r.FallbackModel()
	}
	return &Bridge{
		router:  r,
		eval:    eval,
		search:  searcher,
		fetcher: fetcher,
		history: store,
		emitter: emitter,
		opts:    opts,
	}
}

// Reply produces the bot's answer to msg. The second return value is
// false when the message warrants no reply at all (empty content with no
// usable attachments).
//
// Reply never returns an error: total provider failure yields the fixed
// FailureReply so the user always gets something.
func (b *Bridge) Reply(ctx context.Context, msg Incoming) (string, bool) {
	enrichments := b.enrich(ctx, msg)

	if strings.TrimSpace(msg.Content) == "" && len(enrichments) == 0 {
		return "", false
	}

	ring := b.history.Ring(msg.ChannelID)

	userTurn := chat.Message{
		Role:    chat.RoleUser,
		Content: msg.Author + ":\n" + msg.Content,
	}

	conversation := ring.Snapshot()
	conversation = append(conversation, chat.Message{Role: chat.RoleSystem, Content: b.opts.RolePrompt})
	conversation = append(conversation, userTurn)
	conversation = append(conversation, enrichments...)
	conversation = append(conversation, chat.Message{
		Role:    chat.RoleAssistant,
		Content: b.opts.RoleName + ":\n",
	})

	resp, err := b.router.Create(ctx, b.opts.TextModel, conversation)
	if err != nil {
		b.emitter.Emit(emit.Event{
			Msg:     "reply_failed",
			Channel: msg.ChannelID,
			Err:     err.Error(),
		})
		return FailureReply, true
	}

	reply := b.stripRolePrefix(resp.Text)

	// One atomic batch so concurrent channels cannot interleave a
	// request's turns.
	turns := make([]chat.Message, 0, len(enrichments)+2)
	turns = append(turns, userTurn)
	turns = append(turns, enrichments...)
	turns = append(turns, chat.Message{Role: chat.RoleAssistant, Content: reply})
	ring.Append(turns...)

	return reply, true
}

// enrich runs the image, webpage, and search pipelines and returns the
// extra system turns. Every step degrades to nothing on failure; an
// unreachable page never blocks the reply.
func (b *Bridge) enrich(ctx context.Context, msg Incoming) []chat.Message {
	var enrichments []chat.Message

	for _, att := range msg.Attachments {
		if !isImage(att) {
			continue
		}
		summary, err := b.summarizeImage(ctx, att)
		if err != nil {
			b.emitter.Emit(emit.Event{Msg: "image_summary_failed", Channel: msg.ChannelID, Err: err.Error()})
			continue
		}
		enrichments = append(enrichments, chat.Message{
			Role:    chat.RoleSystem,
			Content: "添付画像の要約: " + summary,
		})
	}

	if url := web.FirstURL(msg.Content); url != "" && b.fetcher != nil {
		if summary, err := b.summarizePage(ctx, url); err != nil {
			b.emitter.Emit(emit.Event{Msg: "page_summary_failed", Channel: msg.ChannelID, Err: err.Error()})
		} else if summary != "" {
			enrichments = append(enrichments, chat.Message{
				Role:    chat.RoleSystem,
				Content: "リンク先ページの要約: " + summary,
			})
		}
	}

	if b.search != nil && b.eval != nil && b.needsExternalKnowledge(ctx, msg) {
		enrichments = append(enrichments, chat.Message{
			Role:    chat.RoleSystem,
			Content: b.searchContext(ctx, msg.Content),
		})
	}

	return enrichments
}

func isImage(att Attachment) bool {
	if strings.HasPrefix(att.ContentType, "image/") {
		return true
	}
	switch strings.ToLower(path.Ext(att.Filename)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// summarizeImage asks the model to describe the attachment. The model
// only receives the filename and URL; vision-capable backends resolve
// the URL themselves.
func (b *Bridge) summarizeImage(ctx context.Context, att Attachment) (string, error) {
	resp, err := b.router.Create(ctx, b.opts.TextModel, []chat.Message{
		{Role: chat.RoleSystem, Content: "次の画像の内容を日本語で簡潔に説明してください。"},
		{Role: chat.RoleUser, Content: fmt.Sprintf("ファイル名: %s\nURL: %s", att.Filename, att.URL)},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// summarizePage fetches the first linked page and summarizes it. YouTube
// links skip summarization; the video title is context enough.
func (b *Bridge) summarizePage(ctx context.Context, url string) (string, error) {
	body, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if isYouTube(url) {
		title, err := web.ExtractTitle(body)
		if err != nil || title == "" {
			return "", err
		}
		return "動画タイトル「" + title + "」", nil
	}

	text, err := web.ExtractText(body)
	if err != nil || text == "" {
		return "", err
	}

	resp, err := b.router.Create(ctx, b.opts.TextModel, []chat.Message{
		{Role: chat.RoleSystem, Content: "次のウェブページの本文を日本語で簡潔に要約してください。"},
		{Role: chat.RoleUser, Content: text},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func isYouTube(url string) bool {
	return strings.Contains(url, "youtube.com") || strings.Contains(url, "youtu.be")
}

// needsExternalKnowledge gates the search pipeline. Either signal alone
// triggers it: an explicit knowledge-request keyword skips the probe, and
// a keyword-free message still gets augmented when the model admits its
// knowledge is insufficient.
func (b *Bridge) needsExternalKnowledge(ctx context.Context, msg Incoming) bool {
	if strings.TrimSpace(msg.Content) == "" {
		return false
	}
	if containsKnowledgeKeyword(msg.Content) {
		return true
	}
	conv := []chat.Message{
		{Role: chat.RoleSystem, Content: b.opts.RolePrompt},
		{Role: chat.RoleUser, Content: msg.Content},
	}
	return b.eval.Insufficient(ctx, b.opts.TextModel, conv)
}

func containsKnowledgeKeyword(content string) bool {
	for _, kw := range knowledgeKeywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// searchContext runs the web search and formats the outcome as a system
// turn. Failures and empty result sets both collapse to the fixed
// no-results phrasing.
func (b *Bridge) searchContext(ctx context.Context, question string) string {
	query := b.searchQuery(ctx, question)

	results, err := b.search.Search(ctx, query, search.DefaultMaxResults)
	if err != nil {
		b.emitter.Emit(emit.Event{Msg: "search_failed", Err: err.Error(), Meta: map[string]interface{}{"query": query}})
		return noSearchResults
	}
	if len(results) == 0 {
		return noSearchResults
	}

	b.emitter.Emit(emit.Event{Msg: "search_done", Meta: map[string]interface{}{"query": query, "results": len(results)}})

	formatted := search.FormatResults(results)
	summary, err := b.summarizeResults(ctx, formatted)
	if err != nil || summary == "" {
		return "検索結果:\n" + formatted
	}
	return "「" + question + "」の検索結果要約:\n" + summary
}

// summarizeResults condenses the formatted result blocks through the
// model before they enter the conversation, so a page of snippets does
// not crowd out the actual history.
func (b *Bridge) summarizeResults(ctx context.Context, formatted string) (string, error) {
	resp, err := b.router.Create(ctx, b.opts.TextModel, []chat.Message{
		{Role: chat.RoleSystem, Content: "次の検索結果を日本語で簡潔に要約してください。"},
		{Role: chat.RoleUser, Content: formatted},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// searchQuery asks the model to distill the question into search
// keywords. On any failure the raw question is used as the query.
func (b *Bridge) searchQuery(ctx context.Context, question string) string {
	resp, err := b.router.Create(ctx, b.opts.TextModel, []chat.Message{
		{Role: chat.RoleSystem, Content: "次の質問をウェブ検索するための検索キーワードだけを出力してください。"},
		{Role: chat.RoleUser, Content: question},
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		return question
	}
	return strings.TrimSpace(resp.Text)
}

// stripRolePrefix removes the priming name prefix the model tends to
// echo back.
func (b *Bridge) stripRolePrefix(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range []string{b.opts.RoleName + ":\n", b.opts.RoleName + ":", b.opts.RoleName + "："} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return trimmed
}
