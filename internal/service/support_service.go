package service

import (
	"context"
	"strings"

	"plume/internal/models"
)

const maxSupportMessageLen = 1000

// TextGenerator produces a reply to a support message. The production
// deployment can point this at a hosted model; LocalResponder is the
// deterministic default.
type TextGenerator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// SupportService backs the support chat widget.
type SupportService struct {
	generator TextGenerator
}

func NewSupportService(generator TextGenerator) *SupportService {
	if generator == nil {
		generator = LocalResponder{}
	}
	return &SupportService{generator: generator}
}

// Chat validates the incoming message and returns the generated reply.
func (s *SupportService) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", models.NewValidationError("Message is required")
	}
	if len(message) > maxSupportMessageLen {
		return "", models.NewValidationError("Message too long (max 1000 characters)")
	}

	reply, err := s.generator.Generate(ctx, message)
	if err != nil {
		return "", models.NewExternalServiceError("support chat", err)
	}
	return reply, nil
}

// LocalResponder answers from a fixed keyword table, so replies are
// deterministic and the widget works without any external service.
type LocalResponder struct{}

type supportRule struct {
	keywords []string
	reply    string
}

var supportRules = []supportRule{
	{
		keywords: []string{"password", "reset", "forgot"},
		reply:    "You can change your password from your profile settings. If you are locked out, use the contact form and we will reset it for you.",
	},
	{
		keywords: []string{"delete", "remove", "account"},
		reply:    "To delete your account or any of your posts, open the item's settings menu. Deletions are permanent.",
	},
	{
		keywords: []string{"image", "photo", "upload", "avatar"},
		reply:    "Images up to 10MB in JPEG, PNG, GIF or WebP format can be attached to posts and used as avatars.",
	},
	{
		keywords: []string{"notification", "notify", "alert"},
		reply:    "You get a notification when someone likes or comments on your post. The bell icon shows your unread count, and you can mark everything read from the panel.",
	},
	{
		keywords: []string{"search", "find"},
		reply:    "Use the search bar to find posts by title or content. Results can be sorted by relevance, likes, or date.",
	},
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hi! Ask me about accounts, posts, images, notifications, or search.",
	},
}

const supportFallback = "I can help with accounts, posts, images, notifications, and search. For anything else, please reach out through the contact form."

func (LocalResponder) Generate(_ context.Context, message string) (string, error) {
	lower := strings.ToLower(message)
	for _, rule := range supportRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply, nil
			}
		}
	}
	return supportFallback, nil
}
