package social

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"khawater/models"
	"khawater/notify"
	"khawater/store"
)

var ErrSelfFollow = errors.New("social: cannot follow yourself")

// Engine implements likes, comments, follows and saves as document
// mutations against the store, with notification fan-out on qualifying
// transitions.
type Engine struct {
	store    store.Store
	notifier *notify.Notifier
}

func New(st store.Store, notifier *notify.Notifier) *Engine {
	return &Engine{store: st, notifier: notifier}
}

// ToggleLike adds or removes the actor in the post's liker set. Set
// membership and the counter move in one document mutation, so the pair
// never diverges. A LIKE notification is emitted only on the transition
// into liked, and never to the actor's own post.
func (e *Engine) ToggleLike(ctx context.Context, post models.Post, actor models.User) error {
	liked := post.LikedByUser(actor.ID)

	upd := store.Update{Inc: map[string]int64{"likes": 1}}
	if liked {
		upd.Inc["likes"] = -1
		upd.Pull = store.Document{"likedBy": actor.ID}
	} else {
		upd.AddToSet = store.Document{"likedBy": actor.ID}
	}
	if err := e.store.Mutate(ctx, models.PostsCollection, post.ID, upd); err != nil {
		return err
	}

	if !liked && post.AuthorID != actor.ID {
		e.notifier.Like(ctx, post, actor)
	}
	return nil
}

// ToggleFollow issues two independent document mutations, one per side of
// the follow edge. They are not transactional: a failure between them
// leaves the graph asymmetric until the next toggle.
func (e *Engine) ToggleFollow(ctx context.Context, actor models.User, targetID string) error {
	if actor.ID == targetID {
		return ErrSelfFollow
	}
	following := actor.IsFollowing(targetID)

	actorUpd := store.Update{Inc: map[string]int64{"followingCount": 1}}
	targetUpd := store.Update{Inc: map[string]int64{"followersCount": 1}}
	if following {
		actorUpd.Inc["followingCount"] = -1
		actorUpd.Pull = store.Document{"followingIds": targetID}
		targetUpd.Inc["followersCount"] = -1
		targetUpd.Pull = store.Document{"followerIds": actor.ID}
	} else {
		actorUpd.AddToSet = store.Document{"followingIds": targetID}
		targetUpd.AddToSet = store.Document{"followerIds": actor.ID}
	}

	if err := e.store.Mutate(ctx, models.UsersCollection, actor.ID, actorUpd); err != nil {
		return err
	}
	if err := e.store.Mutate(ctx, models.UsersCollection, targetID, targetUpd); err != nil {
		return err
	}

	if !following {
		e.notifier.Follow(ctx, targetID, actor)
	}
	return nil
}

// AddComment appends an embedded comment to the post. Emits a COMMENT
// notification when the post belongs to someone else.
func (e *Engine) AddComment(ctx context.Context, post models.Post, actor models.User, text string) (models.Comment, error) {
	comment := models.Comment{
		ID:         uuid.NewString(),
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Content:    text,
		CreatedAt:  time.Now().Unix(),
	}
	err := e.store.Mutate(ctx, models.PostsCollection, post.ID, store.Update{
		AddToSet: store.Document{"comments": comment},
	})
	if err != nil {
		return models.Comment{}, err
	}

	if post.AuthorID != actor.ID {
		e.notifier.Comment(ctx, post, actor)
	}
	return comment, nil
}

// PublishPost creates a new post with denormalized author name and
// verified flag.
func (e *Engine) PublishPost(ctx context.Context, actor models.User, content, imageURL string) (string, error) {
	return e.store.Create(ctx, models.PostsCollection, models.NewPostDoc(actor, content, imageURL))
}

// ToggleSave toggles membership of postID in the actor's saved set.
func (e *Engine) ToggleSave(ctx context.Context, actor models.User, postID string) error {
	upd := store.Update{}
	if actor.HasSaved(postID) {
		upd.Pull = store.Document{"savedPostIds": postID}
	} else {
		upd.AddToSet = store.Document{"savedPostIds": postID}
	}
	return e.store.Mutate(ctx, models.UsersCollection, actor.ID, upd)
}

func (e *Engine) UpdateBio(ctx context.Context, actorID, bio string) error {
	return e.store.Mutate(ctx, models.UsersCollection, actorID, store.Update{
		Set: store.Document{"bio": bio},
	})
}
