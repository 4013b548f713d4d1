package models

import "khawater/store"

type Post struct {
	ID               string    `bson:"_id" json:"id"`
	AuthorID         string    `bson:"authorId" json:"authorId"`
	AuthorName       string    `bson:"authorName" json:"authorName"`
	Content          string    `bson:"content" json:"content"`
	ImageURL         string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Likes            int64     `bson:"likes" json:"likes"`
	LikedBy          []string  `bson:"likedBy" json:"likedBy"`
	Comments         []Comment `bson:"comments" json:"comments"`
	IsVerifiedAuthor bool      `bson:"isVerifiedAuthor" json:"isVerifiedAuthor"`
	CreatedAt        int64     `bson:"createdAt" json:"createdAt"`
	Date             string    `bson:"-" json:"date"`
}

// Comment is embedded in its parent post, never independently addressable.
type Comment struct {
	ID         string `bson:"id" json:"id"`
	AuthorID   string `bson:"authorId,omitempty" json:"authorId,omitempty"`
	AuthorName string `bson:"authorName" json:"authorName"`
	Content    string `bson:"content" json:"content"`
	CreatedAt  int64  `bson:"createdAt" json:"createdAt"`
	Date       string `bson:"-" json:"date"`
}

func (p Post) LikedByUser(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

func PostFromDoc(d store.Document) (Post, error) {
	var p Post
	if err := decode(d, &p); err != nil {
		return Post{}, err
	}
	if p.AuthorName == "" {
		p.AuthorName = DefaultName
	}
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	p.Date = FormatDate(p.CreatedAt)
	for i := range p.Comments {
		p.Comments[i].Date = FormatDate(p.Comments[i].CreatedAt)
	}
	return p, nil
}

// NewPostDoc builds the document created on publish. The author name and
// verified flag are denormalized at creation time.
func NewPostDoc(author User, content, imageURL string) store.Document {
	doc := store.Document{
		"authorId":         author.ID,
		"authorName":       author.Name,
		"content":          content,
		"likes":            int64(0),
		"likedBy":          []interface{}{},
		"comments":         []interface{}{},
		"isVerifiedAuthor": author.IsVerified,
		"createdAt":        store.ServerTimestamp,
	}
	if imageURL != "" {
		doc["imageUrl"] = imageURL
	}
	return doc
}
