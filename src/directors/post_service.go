package directors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pranubaita/photoshare/src/catalog"
	"github.com/pranubaita/photoshare/src/engine"
	"github.com/pranubaita/photoshare/src/models"
	"go.uber.org/zap"
)

var (
	// ErrForbidden is returned when a user changes a post or comment they do not own.
	ErrForbidden    = errors.New("not allowed")
	ErrEmptyComment = errors.New("comment is empty")
)

// PostService manages posts, their likes and their comments.
type PostService struct {
	store  engine.Store
	now    func() time.Time
	logger *zap.SugaredLogger
}

func NewPostService(store engine.Store, now func() time.Time, logger *zap.SugaredLogger) *PostService {
	return &PostService{
		store:  store,
		now:    now,
		logger: logger,
	}
}

// CreatePost stores a post for a photo uploaded as url. An empty url gets a
// generated one.
func (s *PostService) CreatePost(url, userName, caption string) (models.Record, error) {
	if url == "" {
		url = catalog.NewPostURL()
	}

	post, err := s.store.Create(catalog.Posts, models.Record{
		"url":        url,
		"caption":    caption,
		"time_stamp": catalog.Timestamp(s.now()),
		"user":       userName,
		"likes":      []interface{}{},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Created post", "url", url, "user", userName)
	return post, nil
}

func (s *PostService) GetPost(url string) (models.Record, error) {
	return s.store.FetchOne(catalog.Posts, url, true)
}

// Feed returns every post, newest first.
func (s *PostService) Feed() ([]models.Record, error) {
	posts, err := s.store.FetchAll(catalog.Posts)
	if err != nil {
		return nil, err
	}
	sortByTimestamp(posts)
	return posts, nil
}

// FeedItem is a post of the feed together with its comments.
type FeedItem struct {
	Post     models.Record
	Comments []models.Record
}

// FeedWithComments returns every post, newest first, with the comments of
// each post in the order they were made. Both collections are read once.
func (s *PostService) FeedWithComments() ([]FeedItem, error) {
	posts, err := s.Feed()
	if err != nil {
		return nil, err
	}
	comments, err := s.store.FetchAll(catalog.Comments)
	if err != nil {
		return nil, err
	}
	sortByID(comments)

	byPost := make(map[interface{}][]models.Record, len(posts))
	for _, comment := range comments {
		byPost[comment["post"]] = append(byPost[comment["post"]], comment)
	}

	items := make([]FeedItem, 0, len(posts))
	for _, post := range posts {
		postComments := byPost[post["url"]]
		if postComments == nil {
			postComments = []models.Record{}
		}
		items = append(items, FeedItem{Post: post, Comments: postComments})
	}
	return items, nil
}

// PostsByUser returns the posts of one user, newest first.
func (s *PostService) PostsByUser(userName string) ([]models.Record, error) {
	posts, err := s.Feed()
	if err != nil {
		return nil, err
	}
	return filterBy(posts, "user", userName), nil
}

// ToggleLike adds userName to the likes of a post, or removes it when
// already there, and returns the updated post.
//
// The post is read and written in two store calls, so two concurrent toggles
// of the same post can lose one of the changes.
func (s *PostService) ToggleLike(url, userName string) (models.Record, error) {
	post, err := s.GetPost(url)
	if err != nil {
		return nil, err
	}

	likes, _ := post["likes"].([]interface{})
	updated := make([]interface{}, 0, len(likes)+1)
	found := false
	for _, like := range likes {
		if like == userName {
			found = true
			continue
		}
		updated = append(updated, like)
	}
	if !found {
		updated = append(updated, userName)
	}

	return s.store.Update(catalog.Posts, url, models.Record{"likes": updated})
}

// DeletePost removes a post owned by userName together with its comments.
func (s *PostService) DeletePost(url, userName string) error {
	post, err := s.GetPost(url)
	if err != nil {
		return err
	}
	if post["user"] != userName {
		return fmt.Errorf("%w: post %s belongs to another user", ErrForbidden, url)
	}

	if err := s.store.Delete(catalog.Posts, url, true); err != nil {
		return err
	}

	comments, err := s.CommentsFor(url)
	if err != nil {
		return err
	}
	for _, comment := range comments {
		key, err := models.KeyOf(comment["id"])
		if err != nil {
			return err
		}
		if err := s.store.Delete(catalog.Comments, key, false); err != nil {
			return err
		}
	}

	s.logger.Infow("Deleted post", "url", url, "comments", len(comments))
	return nil
}

// AddComment stores a comment on an existing post. The body is trimmed and
// must not be empty.
func (s *PostService) AddComment(url, commenter, body string) (models.Record, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.GetPost(url); err != nil {
		return nil, err
	}

	return s.store.Create(catalog.Comments, models.Record{
		"body":       body,
		"time_stamp": catalog.Timestamp(s.now()),
		"commenter":  commenter,
		"post":       url,
	})
}

// CommentsFor returns the comments of a post in the order they were made.
func (s *PostService) CommentsFor(url string) ([]models.Record, error) {
	comments, err := s.store.FetchAll(catalog.Comments)
	if err != nil {
		return nil, err
	}
	comments = filterBy(comments, "post", url)
	sortByID(comments)
	return comments, nil
}

func sortByID(comments []models.Record) {
	sort.SliceStable(comments, func(i, j int) bool {
		a, _ := comments[i]["id"].(float64)
		b, _ := comments[j]["id"].(float64)
		return a < b
	})
}

// DeleteComment removes a comment made by userName. Missing comments are ignored.
func (s *PostService) DeleteComment(id float64, userName string) error {
	key, err := models.KeyOf(id)
	if err != nil {
		return err
	}

	comment, err := s.store.FetchOne(catalog.Comments, key, false)
	if err != nil || comment == nil {
		return err
	}
	if comment["commenter"] != userName {
		return fmt.Errorf("%w: comment %s belongs to another user", ErrForbidden, key)
	}

	return s.store.Delete(catalog.Comments, key, false)
}

func filterBy(records []models.Record, field string, value interface{}) []models.Record {
	filtered := make([]models.Record, 0, len(records))
	for _, record := range records {
		if record[field] == value {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func sortByTimestamp(records []models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, _ := records[i]["time_stamp"].(float64)
		b, _ := records[j]["time_stamp"].(float64)
		return a > b
	})
}
