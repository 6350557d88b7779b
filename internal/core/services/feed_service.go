package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

const maxPostLength = 5000

// FeedService implements the institution community feed: posts, votes and moderation.
type FeedService struct {
	store    ports.Store
	notifier *Notifier
	logger   *zap.Logger
}

func NewFeedService(store ports.Store, notifier *Notifier, logger *zap.Logger) *FeedService {
	return &FeedService{store: store, notifier: notifier, logger: logger}
}

// ListFeed returns the posts of every community the caller can see. Users linked to no
// institution get an empty feed.
func (s *FeedService) ListFeed(ctx context.Context, actor domain.Actor) ([]domain.Post, error) {
	var out []domain.Post
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		user, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		ids, err := visibleInstitutionIDs(ctx, r, user)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			out = []domain.Post{}
			return nil
		}
		out, err = r.Posts().ListByInstitutions(ctx, ids)
		return err
	})
	return out, err
}

// CreatePost publishes into the caller's community. Staff post into their own
// institution; everyone else posts into the institution they linked to first.
func (s *FeedService) CreatePost(ctx context.Context, actor domain.Actor, in ports.PostInput) (*domain.Post, error) {
	content := strings.TrimSpace(in.Content)
	fields := map[string]string{}
	required(fields, "content", content, "O conteúdo da publicação é obrigatório")
	if len(content) > maxPostLength {
		fields["content"] = fmt.Sprintf("A publicação deve ter no máximo %d caracteres", maxPostLength)
	}
	if err := validationResult(fields); err != nil {
		return nil, err
	}

	var post domain.Post
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		author, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		institutionID, err := postingInstitution(ctx, r, author)
		if err != nil {
			return err
		}
		post = domain.Post{
			ID:            uuid.NewString(),
			AuthorID:      author.ID,
			InstitutionID: institutionID,
			Content:       content,
			ImageURL:      strings.TrimSpace(in.ImageURL),
			CreatedAt:     nowUTC(),
		}
		return r.Posts().Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("post", "create")
	return &post, nil
}

func postingInstitution(ctx context.Context, r ports.Repositories, author *domain.User) (string, error) {
	if id := author.StaffInstitutionID(); id != "" {
		return id, nil
	}
	links, err := r.InstitutionLinks().ListByUser(ctx, author.ID)
	if err != nil {
		return "", err
	}
	if len(links) == 0 {
		return "", domain.Errorf(domain.KindNoInstitution, "Conecte-se a uma instituição para publicar na comunidade")
	}
	return links[0].InstitutionID, nil
}

// Vote applies toggle semantics: the same vote twice removes it, the opposite vote replaces it.
func (s *FeedService) Vote(ctx context.Context, actor domain.Actor, postID, voteType string) (*ports.VoteResult, error) {
	next, err := domain.ParseVoteType(voteType)
	if err != nil {
		return nil, err
	}

	var result ports.VoteResult
	err = s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		voter, err := loadActor(ctx, r, actor)
		if err != nil {
			return err
		}
		post, err := s.visiblePost(ctx, r, voter, postID)
		if err != nil {
			return err
		}

		var current *domain.VoteType
		stored, err := r.Posts().GetVote(ctx, post.ID, voter.ID)
		switch {
		case err == nil:
			current = &stored.VoteType
		case !errors.Is(err, ports.ErrNotFound):
			return err
		}

		outcome := domain.ApplyVote(post, current, next)
		if outcome == domain.VoteRemoved {
			if err := r.Posts().DeleteVote(ctx, post.ID, voter.ID); err != nil {
				return err
			}
			result.Vote = nil
		} else {
			vote := domain.PostVote{PostID: post.ID, UserID: voter.ID, VoteType: next, CreatedAt: nowUTC()}
			if err := r.Posts().UpsertVote(ctx, vote); err != nil {
				return err
			}
			result.Vote = &next
		}
		if err := r.Posts().Update(ctx, *post); err != nil {
			return err
		}
		result.Post = *post
		result.Outcome = outcome

		if outcome != domain.VoteRemoved && post.AuthorID != voter.ID {
			word := "positivo"
			if next == domain.Downvote {
				word = "negativo"
			}
			s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
				UserID:  post.AuthorID,
				Type:    domain.NotificationVote,
				Message: fmt.Sprintf("%s deu um voto %s na sua publicação", voter.DisplayName(), word),
				PostID:  domain.Ref(post.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("vote", string(result.Outcome))
	return &result, nil
}

func (s *FeedService) TogglePin(ctx context.Context, actor domain.Actor, postID string) (*domain.Post, error) {
	var post *domain.Post
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		post, err = s.moderated(ctx, r, actor, postID)
		if err != nil {
			return err
		}
		post.Pinned = !post.Pinned
		return r.Posts().Update(ctx, *post)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("post", "pin")
	return post, nil
}

// ToggleFlag flips the moderation flag. Only raising the flag notifies the author.
func (s *FeedService) ToggleFlag(ctx context.Context, actor domain.Actor, postID string) (*domain.Post, error) {
	var post *domain.Post
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		post, err = s.moderated(ctx, r, actor, postID)
		if err != nil {
			return err
		}
		post.Flagged = !post.Flagged
		if err := r.Posts().Update(ctx, *post); err != nil {
			return err
		}
		if post.Flagged && post.AuthorID != actor.ID {
			s.notifier.Notify(ctx, r.Notifications(), domain.Notification{
				UserID:  post.AuthorID,
				Type:    domain.NotificationPostFlagged,
				Message: "Sua publicação foi sinalizada pela moderação da instituição",
				PostID:  domain.Ref(post.ID),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("post", "flag")
	return post, nil
}

func (s *FeedService) DeletePost(ctx context.Context, actor domain.Actor, postID string) error {
	err := s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		post, err := r.Posts().Get(ctx, postID)
		if err != nil {
			return notFound(err, "Publicação")
		}
		if post.AuthorID != actor.ID {
			return domain.Forbidden("Apenas o autor pode excluir esta publicação")
		}
		return r.Posts().Delete(ctx, post.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordTransition("post", "delete")
	return nil
}

func (s *FeedService) visiblePost(ctx context.Context, r ports.Repositories, user *domain.User, postID string) (*domain.Post, error) {
	post, err := r.Posts().Get(ctx, postID)
	if err != nil {
		return nil, notFound(err, "Publicação")
	}
	ok, err := canSee(ctx, r, user, post.InstitutionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Forbidden("Você não faz parte desta comunidade")
	}
	return post, nil
}

func (s *FeedService) moderated(ctx context.Context, r ports.Repositories, actor domain.Actor, postID string) (*domain.Post, error) {
	post, err := r.Posts().Get(ctx, postID)
	if err != nil {
		return nil, notFound(err, "Publicação")
	}
	staff, err := loadActor(ctx, r, actor)
	if err != nil {
		return nil, err
	}
	if !staff.ActsFor(post.InstitutionID) {
		return nil, domain.Forbidden("Apenas a instituição pode moderar publicações da sua comunidade")
	}
	return post, nil
}
