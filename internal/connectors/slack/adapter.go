// Package slack implements the Slack source adapter. Documents map to
// message threads: the native id is "<channel>:<ts>".
package slack

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/custodia-labs/fetcha-cli/internal/connectors"
	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
	"github.com/custodia-labs/fetcha-cli/internal/core/ports/driven"
)

var _ driven.SourceAdapter = (*Adapter)(nil)

// maxChannels bounds how many channels recent-activity scans.
const maxChannels = 20

// historyLimit bounds messages fetched per channel for recent activity.
const historyLimit = 25

// Adapter serves search, thread and recent-activity requests from Slack.
type Adapter struct {
	client  *slack.Client
	limiter *connectors.RateLimiter
	retry   connectors.RetryPolicy
}

// New creates a Slack adapter using the given bot or user token.
func New(token string) *Adapter {
	return &Adapter{
		client: slack.New(token),
		// Tier 2 methods allow ~20 requests/min; stay conservative.
		limiter: connectors.NewRateLimiter(connectors.RateLimitConfig{RequestsPerSecond: 1.0, BurstSize: 3}),
		retry:   connectors.DefaultRetryPolicy,
	}
}

// Source implements driven.SourceAdapter.
func (a *Adapter) Source() domain.Source { return domain.SourceSlack }

// Search implements driven.SourceAdapter.
func (a *Adapter) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchResult, error) {
	params := slack.NewSearchParameters()
	params.Count = maxResults
	params.Sort = "timestamp"
	params.SortDirection = "desc"

	var matches *slack.SearchMessages
	err := connectors.Retry(ctx, a.retry, "slack search", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		m, err := a.client.SearchMessagesContext(ctx, query, params)
		if err != nil {
			return mapError("search", err)
		}
		matches = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(matches.Matches))
	for _, m := range matches.Matches {
		results = append(results, domain.SearchResult{
			ID:           messageID(m.Channel.ID, m.Timestamp),
			Title:        messageTitle(m.Channel.Name),
			Snippet:      domain.TruncateSnippet(m.Text),
			URL:          m.Permalink,
			Source:       domain.SourceSlack,
			LastModified: tsToISO(m.Timestamp),
			Author:       m.Username,
			AccessLevel:  domain.AccessViewer,
		})
	}
	return results, nil
}

// GetDocument implements driven.SourceAdapter. The document for a message
// is its whole thread, joined in order.
func (a *Adapter) GetDocument(ctx context.Context, nativeID string) (*domain.DocumentContent, error) {
	channelID, ts, ok := strings.Cut(nativeID, ":")
	if !ok || channelID == "" || ts == "" {
		return nil, fmt.Errorf("slack id %q must be channel:timestamp: %w", nativeID, domain.ErrMalformedID)
	}

	var messages []slack.Message
	err := connectors.Retry(ctx, a.retry, "slack thread", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		msgs, _, _, err := a.client.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
			ChannelID: channelID,
			Timestamp: ts,
		})
		if err != nil {
			return mapError("document", err)
		}
		messages = msgs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("slack thread %s: %w", nativeID, domain.ErrNotFound)
	}

	channelName := a.channelName(ctx, channelID)

	var sb strings.Builder
	for _, m := range messages {
		author := m.Username
		if author == "" {
			author = m.User
		}
		fmt.Fprintf(&sb, "%s: %s\n", author, m.Text)
		if sb.Len() > domain.MaxContentBytes {
			break
		}
	}

	root := messages[0]
	author := root.Username
	if author == "" {
		author = root.User
	}
	return &domain.DocumentContent{
		ID:           messageID(channelID, ts),
		Title:        messageTitle(channelName),
		Content:      domain.TruncateContent(sb.String(), domain.MaxContentBytes),
		Source:       domain.SourceSlack,
		URL:          a.permalink(ctx, channelID, ts),
		LastModified: tsToISO(latestTS(messages)),
		Author:       author,
	}, nil
}

// GetRecentUpdates implements driven.SourceAdapter. Slack has no global
// activity feed, so recent messages are gathered per channel, bounded by
// maxChannels and historyLimit.
func (a *Adapter) GetRecentUpdates(ctx context.Context, days int) ([]domain.RecentUpdate, error) {
	channels, err := a.memberChannels(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	oldest := strconv.FormatInt(cutoff.Unix(), 10)

	var updates []domain.RecentUpdate
	for _, ch := range channels {
		chUpdates, err := a.channelHistory(ctx, ch, oldest)
		if err != nil {
			// One unreadable channel must not sink the rest.
			continue
		}
		updates = append(updates, chUpdates...)
	}
	return updates, nil
}

func (a *Adapter) channelHistory(ctx context.Context, ch slack.Channel, oldest string) ([]domain.RecentUpdate, error) {
	var history *slack.GetConversationHistoryResponse
	err := connectors.Retry(ctx, a.retry, "slack history", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		h, err := a.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: ch.ID,
			Oldest:    oldest,
			Limit:     historyLimit,
		})
		if err != nil {
			return mapError("updates", err)
		}
		history = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	updates := make([]domain.RecentUpdate, 0, len(history.Messages))
	for _, m := range history.Messages {
		if m.SubType != "" {
			// Joins, topic changes and other channel events are noise.
			continue
		}
		author := m.Username
		if author == "" {
			author = m.User
		}
		updates = append(updates, domain.RecentUpdate{
			ID:           messageID(ch.ID, m.Timestamp),
			Title:        messageTitle(ch.Name),
			Snippet:      domain.TruncateSnippet(m.Text),
			Source:       domain.SourceSlack,
			LastModified: tsToISO(m.Timestamp),
			Author:       author,
			UpdateType:   domain.UpdateCommented,
		})
	}
	return updates, nil
}

func (a *Adapter) memberChannels(ctx context.Context) ([]slack.Channel, error) {
	var channels []slack.Channel
	err := connectors.Retry(ctx, a.retry, "slack channels", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		chs, _, err := a.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			ExcludeArchived: true,
			Limit:           100,
			Types:           []string{"public_channel", "private_channel"},
		})
		if err != nil {
			return mapError("updates", err)
		}
		channels = chs
		return nil
	})
	if err != nil {
		return nil, err
	}

	member := make([]slack.Channel, 0, maxChannels)
	for _, ch := range channels {
		if !ch.IsMember {
			continue
		}
		member = append(member, ch)
		if len(member) == maxChannels {
			break
		}
	}
	return member, nil
}

func (a *Adapter) channelName(ctx context.Context, channelID string) string {
	var name string
	_ = connectors.Retry(ctx, a.retry, "slack channel info", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		info, err := a.client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
			ChannelID: channelID,
		})
		if err != nil {
			return mapError("document", err)
		}
		name = info.Name
		return nil
	})
	return name
}

func (a *Adapter) permalink(ctx context.Context, channelID, ts string) string {
	var link string
	_ = connectors.Retry(ctx, a.retry, "slack permalink", func(ctx context.Context) error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
		l, err := a.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
			Channel: channelID,
			Ts:      ts,
		})
		if err != nil {
			return mapError("document", err)
		}
		link = l
		return nil
	})
	return link
}

// messageID builds the composite id for a message. The native part keeps
// its own internal colon; the aggregator splits only on the first one.
func messageID(channelID, ts string) string {
	return domain.SourceSlack.DocumentID(channelID + ":" + ts)
}

func messageTitle(channelName string) string {
	if channelName == "" {
		return "Slack thread"
	}
	return "#" + channelName
}

// latestTS returns the newest timestamp in a thread. Slack ts strings
// compare numerically within their fixed format.
func latestTS(messages []slack.Message) string {
	latest := ""
	for _, m := range messages {
		if m.Timestamp > latest {
			latest = m.Timestamp
		}
	}
	return latest
}

// tsToISO converts a Slack "seconds.fraction" timestamp to RFC 3339.
func tsToISO(ts string) string {
	f, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return ""
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format(time.RFC3339)
}
