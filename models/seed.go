package models

// SeedPosts is the fixed placeholder feed shown while the posts collection
// is still empty.
func SeedPosts() []Post {
	return []Post{
		{
			ID:               "p1",
			AuthorID:         "u2",
			AuthorName:       "نورة السعيد",
			Content:          "على ضفاف الصمت تهمس الأرواح، وتحكي الحروف ما عجزت عنه القلوب. كن كالغمام، يمر صامتاً ويترك في الأرض أثراً.",
			Likes:            124,
			LikedBy:          []string{},
			IsVerifiedAuthor: true,
			Date:             "منذ ساعتين",
			Comments: []Comment{
				{ID: "c1", AuthorName: "فارس", Content: "كلمات لامست الوجدان، شكراً لكِ.", Date: "قبل ساعة"},
			},
		},
		{
			ID:         "p2",
			AuthorID:   "u3",
			AuthorName: "فارس الشمري",
			Content:    "تغرب الشمس في عينيكِ فجراً..\nوتشرق في حنايا الروح سراً.",
			Likes:      89,
			LikedBy:    []string{},
			ImageURL:   "https://images.unsplash.com/photo-1470252649358-96949c750b8b?auto=format&fit=crop&q=80&w=800",
			Date:       "منذ ٤ ساعات",
			Comments:   []Comment{},
		},
	}
}
