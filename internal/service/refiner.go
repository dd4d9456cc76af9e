package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/clustermail/topicd/internal/keyphrase"
	"github.com/clustermail/topicd/internal/models"
)

// phraseDelimiter joins extracted key phrases into a topic display name.
const phraseDelimiter = ", "

// RefinerStore is the data-access interface NamingRefiner depends on.
type RefinerStore interface {
	FetchTopics(ctx context.Context, user string) ([]models.Topic, error)
	MembershipTexts(ctx context.Context, user string, groupID int) ([]string, error)
	UpsertTopic(ctx context.Context, user string, groupID int, name string) error
}

// NamingRefiner replaces default and synthetic topic names with durable,
// human-readable names extracted from the members' own text.
type NamingRefiner struct {
	store      RefinerStore
	extractor  keyphrase.Extractor
	stopwords  keyphrase.Stopwords
	maxPhrases int
	log        *logrus.Logger
}

// NewNamingRefiner creates a NamingRefiner extracting up to maxPhrases
// phrases per topic.
func NewNamingRefiner(store RefinerStore, extractor keyphrase.Extractor, maxPhrases int, log *logrus.Logger) *NamingRefiner {
	return &NamingRefiner{
		store:      store,
		extractor:  extractor,
		stopwords:  keyphrase.DefaultStopwords,
		maxPhrases: maxPhrases,
		log:        log,
	}
}

// Refine renames every eligible topic of the user from its members' text and
// returns the applied renames keyed by group ID.
//
// Reserved topics (outlier, unmodeled) keep their fixed names. A topic with
// no members, or whose corpus yields no phrases, keeps its current name;
// repeated runs over unchanged memberships are idempotent. Store read/write
// failures propagate; a fetch failure for a single topic only skips that
// topic.
func (r *NamingRefiner) Refine(ctx context.Context, user string) (map[int]string, error) {
	topics, err := r.store.FetchTopics(ctx, user)
	if err != nil {
		return nil, err
	}

	renamed := make(map[int]string)

	for _, t := range topics {
		if t.GroupID == models.UnmodeledGroupID || t.GroupID == models.OutlierGroupID {
			continue
		}
		if t.Name == models.UnmodeledTopicName {
			continue
		}

		texts, err := r.store.MembershipTexts(ctx, user, t.GroupID)
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"user":     user,
				"group_id": t.GroupID,
			}).Warn("fetching membership texts failed, keeping current name")

			continue
		}

		if len(texts) == 0 {
			continue
		}

		phrases := r.extractor.ExtractTopPhrases(strings.Join(texts, " "), r.stopwords, r.maxPhrases)
		if len(phrases) == 0 {
			continue
		}

		name := strings.Join(phrases, phraseDelimiter)
		if err := r.store.UpsertTopic(ctx, user, t.GroupID, name); err != nil {
			return nil, err
		}

		renamed[t.GroupID] = name
	}

	return renamed, nil
}
